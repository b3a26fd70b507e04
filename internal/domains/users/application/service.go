package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
	newID    func() uuid.UUID
}

// NewService wires the users service. Every collaborator is required.
func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, sessions: sessions, tokens: tokens, newID: uuid.New}
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*ports.Session, error) {
	role, err := domain.ParseRegistrationRole(input.Role)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := domain.NewUser(s.newID(), input.Email, input.Password, role, input.Profile)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return s.openSession(ctx, saved)
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !found.Entity.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if !found.Entity.Active {
		return nil, mapError(ports.ErrAccountInactive)
	}
	return s.openSession(ctx, found)
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate verifies a bearer token and returns the caller.
// The role is taken from the stored account, not the token.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	claimed, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return auth.Identity{}, mapError(err)
	}
	live, err := s.sessions.Exists(ctx, token)
	if err != nil {
		return auth.Identity{}, err
	}
	if !live {
		return auth.Identity{}, mapError(ports.ErrInvalidToken)
	}
	found, err := s.repo.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return auth.Identity{}, mapError(ports.ErrInvalidToken)
		}
		return auth.Identity{}, err
	}
	if !found.Entity.Active {
		return auth.Identity{}, mapError(ports.ErrAccountInactive)
	}
	return found.Entity.Identity(), nil
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, caller auth.Identity) (*ports.UserProjection, error) {
	found, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return found, nil
}

// UpdateProfile replaces the caller's editable fields.
func (s *Service) UpdateProfile(ctx context.Context, caller auth.Identity, profile domain.Profile) (*ports.UserProjection, error) {
	found, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := found.Entity.UpdateProfile(profile); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, found.Entity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Deactivate disables the caller's account and revokes all of its sessions.
func (s *Service) Deactivate(ctx context.Context, caller auth.Identity) error {
	found, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return mapError(err)
	}
	found.Entity.Deactivate()
	if _, err := s.repo.Update(ctx, found.Entity); err != nil {
		return mapError(err)
	}
	return s.sessions.DeleteForUser(ctx, caller.UserID)
}

func (s *Service) openSession(ctx context.Context, user *ports.UserProjection) (*ports.Session, error) {
	token, err := s.tokens.Issue(user.Entity.Identity())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user.Entity.ID, token.Value, token.ExpiresAt); err != nil {
		return nil, err
	}
	return &ports.Session{User: user, Token: token}, nil
}

var _ ports.Service = (*Service)(nil)
