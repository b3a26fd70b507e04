package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// UserProjection is a user plus its persistence timestamps.
type UserProjection = projection.Projection[*domain.User]

// Repository persists accounts. Emails are unique case-insensitively.
type Repository interface {
	// Create inserts a new account, failing with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*UserProjection, error)
	// Update overwrites mutable fields of an existing account.
	Update(ctx context.Context, user *domain.User) (*UserProjection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserProjection, error)
	GetByEmail(ctx context.Context, email string) (*UserProjection, error)
}
