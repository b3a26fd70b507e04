package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore tracks issued tokens so logout can revoke them before expiry.
type SessionStore interface {
	Save(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// Exists reports whether token is stored and not yet expired.
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
	// DeleteForUser revokes every token of a user.
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
	// PurgeExpired removes expired sessions and reports how many were dropped.
	PurgeExpired(ctx context.Context) (int64, error)
}
