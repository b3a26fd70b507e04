package ventrestserver

import (
	"time"

	usersdomain "github.com/Apurer/ventrest-api/internal/domains/users/domain"
	usersports "github.com/Apurer/ventrest-api/internal/domains/users/ports"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type RegisterRequest struct {
	Email        string  `json:"email" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	Role         string  `json:"role" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone,omitempty"`
	BusinessName string  `json:"businessName,omitempty"`
	Address      Address `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone,omitempty"`
	BusinessName string  `json:"businessName,omitempty"`
	Address      Address `json:"address"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"businessName,omitempty"`
	Address      Address   `json:"address"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func (r ProfileRequest) toProfile() usersdomain.Profile {
	return usersdomain.Profile{
		Name:         r.Name,
		Phone:        r.Phone,
		BusinessName: r.BusinessName,
		Address:      usersdomain.Address(r.Address),
	}
}

func fromUser(p *usersports.UserProjection) User {
	u := p.Entity
	return User{
		ID:           u.ID.String(),
		Email:        u.Email,
		Role:         string(u.Role),
		Name:         u.Name,
		Phone:        u.Phone,
		BusinessName: u.BusinessName,
		Address:      Address(u.Address),
		IsActive:     u.Active,
		CreatedAt:    p.Metadata.CreatedAt,
	}
}

func fromSession(s *usersports.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token.Value,
		ExpiresAt: s.Token.ExpiresAt,
		User:      fromUser(s.User),
	}
}
