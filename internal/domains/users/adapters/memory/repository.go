package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

type entry struct {
	user      domain.User
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory account store.
type Repository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entry
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{byID: map[uuid.UUID]*entry{}, byEmail: map[string]uuid.UUID{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*ports.UserProjection, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return nil, ports.ErrEmailTaken
	}
	now := r.now()
	stored := &entry{user: *user, createdAt: now, updatedAt: now}
	r.byID[user.ID] = stored
	r.byEmail[email] = user.ID
	return stored.projection(), nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*ports.UserProjection, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	email, role := stored.user.Email, stored.user.Role
	stored.user = *user
	stored.user.Email, stored.user.Role = email, role
	stored.updatedAt = r.now()
	return stored.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*ports.UserProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*ports.UserProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.byID[id].projection(), nil
}

func (e *entry) projection() *ports.UserProjection {
	clone := e.user
	p := projection.New(&clone, e.createdAt, e.updatedAt)
	return &p
}
