package domain

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const minPasswordLength = 6

var (
	ErrInvalidEmail  = errors.New("a valid email address is required")
	ErrEmptyName     = errors.New("name is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrInvalidRole   = errors.New("role must be vendor or supplier")
)

// Address is where a vendor receives deliveries or a supplier operates from.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// User is a marketplace account. Its role never changes after registration.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         auth.Role
	Name         string
	Phone        string
	BusinessName string
	Address      Address
	Active       bool
}

// Profile carries the editable account fields.
type Profile struct {
	Name         string
	Phone        string
	BusinessName string
	Address      Address
}

// NewUser builds an active account ensuring required invariants.
func NewUser(id uuid.UUID, email, password string, role auth.Role, profile Profile) (*User, error) {
	u := &User{ID: id, Role: role, Active: true}
	if _, err := auth.ParseRole(string(role)); err != nil {
		return nil, ErrInvalidRole
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.UpdateProfile(profile); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// ParseRegistrationRole accepts the canonical roles plus the buyer/seller aliases
// older clients still send.
func ParseRegistrationRole(raw string) (auth.Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buyer":
		return auth.RoleVendor, nil
	case "seller":
		return auth.RoleSupplier, nil
	}
	role, err := auth.ParseRole(raw)
	if err != nil {
		return "", ErrInvalidRole
	}
	return role, nil
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetEmail validates and normalizes the login address.
func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword hashes the password with bcrypt.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile replaces the editable fields.
func (u *User) UpdateProfile(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	u.Phone = strings.TrimSpace(p.Phone)
	u.BusinessName = strings.TrimSpace(p.BusinessName)
	u.Address = Address{
		Street:  strings.TrimSpace(p.Address.Street),
		City:    strings.TrimSpace(p.Address.City),
		State:   strings.TrimSpace(p.Address.State),
		ZipCode: strings.TrimSpace(p.Address.ZipCode),
	}
	return nil
}

// Deactivate blocks every further authentication.
func (u *User) Deactivate() {
	u.Active = false
}

// Identity returns the request identity for this account.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}
