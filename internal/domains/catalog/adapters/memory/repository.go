package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

type entry struct {
	product   *domain.Product
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory product store for development and tests.
type Repository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*entry
	now      func() time.Time
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{products: map[uuid.UUID]*entry{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save inserts a product or replaces its catalog fields. The stored stock of
// an existing product is kept.
func (r *Repository) Save(_ context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	existing, ok := r.products[product.ID]
	if !ok {
		existing = &entry{createdAt: now}
		r.products[product.ID] = existing
	}
	replacement := product.Clone()
	if ok {
		if err := replacement.Restock(existing.product.Stock); err != nil {
			return nil, err
		}
	}
	existing.product = replacement
	existing.updatedAt = now
	return existing.projection(), nil
}

// Update applies fn to the current product under the write lock.
func (r *Repository) Update(_ context.Context, id uuid.UUID, fn func(*domain.Product) error) (*ports.ProductProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, err := r.adjust(id, fn)
	if err != nil {
		return nil, err
	}
	return stored.projection(), nil
}

// GetByID returns a copy of the stored product.
func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*ports.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

// List returns products matching filter, newest first.
func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*ports.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*ports.ProductProjection, 0, len(r.products))
	for _, stored := range r.products {
		if matches(stored.product, filter) {
			result = append(result, stored.projection())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Metadata.CreatedAt.Equal(b.Metadata.CreatedAt) {
			return a.Metadata.CreatedAt.After(b.Metadata.CreatedAt)
		}
		return a.Entity.ID.String() < b.Entity.ID.String()
	})
	return result, nil
}

// Adjust runs fn against the live product under the write lock. The product
// is only changed when fn returns nil.
func (r *Repository) Adjust(id uuid.UUID, fn func(*domain.Product) error) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, err := r.adjust(id, fn)
	if err != nil {
		return nil, err
	}
	return stored.product.Clone(), nil
}

func (r *Repository) adjust(id uuid.UUID, fn func(*domain.Product) error) (*entry, error) {
	stored, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := stored.product.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	stored.product = working
	stored.updatedAt = r.now()
	return stored, nil
}

// Snapshot returns a copy of every stored product.
func (r *Repository) Snapshot() []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, stored := range r.products {
		out = append(out, stored.product.Clone())
	}
	return out
}

func (e *entry) projection() *ports.ProductProjection {
	p := projection.New(e.product.Clone(), e.createdAt, e.updatedAt)
	return &p
}

func matches(p *domain.Product, filter ports.Filter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, p.Status) {
		return false
	}
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.SupplierID != uuid.Nil && p.SupplierID != filter.SupplierID {
		return false
	}
	if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
		return false
	}
	if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
		return false
	}
	if term := strings.ToLower(filter.Search); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	return true
}

func containsStatus(statuses []domain.Status, status domain.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
