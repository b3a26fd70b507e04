package ports

import (
	"context"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// RegisterInput creates an account.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
	Profile  domain.Profile
}

// Session is the outcome of a successful register or login.
type Session struct {
	User  *UserProjection
	Token IssuedToken
}

// Service exposes the users use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	// Authenticate verifies a bearer token and returns the caller.
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	Me(ctx context.Context, caller auth.Identity) (*UserProjection, error)
	UpdateProfile(ctx context.Context, caller auth.Identity, profile domain.Profile) (*UserProjection, error)
	Deactivate(ctx context.Context, caller auth.Identity) error
}
