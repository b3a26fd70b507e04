// Package memory keeps orders in process memory. Placement is serialised by a
// unit-of-work mutex and stock changes are compensated when a unit fails.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var (
	_ ports.Repository       = (*Store)(nil)
	_ ports.UnitOfWork       = (*Store)(nil)
	_ ports.IdempotencyStore = (*Store)(nil)
)

type entry struct {
	order     *domain.Order
	seq       uint64
	createdAt time.Time
	updatedAt time.Time
}

// Store holds orders and idempotency keys next to an in-memory catalog.
type Store struct {
	placement sync.Mutex

	mu      sync.RWMutex
	orders  map[uuid.UUID]*entry
	keys    map[string]ports.IdempotencyRecord
	seq     uint64
	catalog *catalogmemory.Repository
	now     func() time.Time
}

// NewStore wires the order store to the catalog whose stock it decrements.
func NewStore(catalog *catalogmemory.Repository) *Store {
	return &Store{
		orders:  map[uuid.UUID]*entry{},
		keys:    map[string]ports.IdempotencyRecord{},
		catalog: catalog,
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Do runs fn as one placement unit. Only one unit runs at a time.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	s.placement.Lock()
	defer s.placement.Unlock()
	tx := &unit{store: s, keys: map[string]ports.IdempotencyRecord{}}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*ports.OrderProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

func (s *Store) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]*ports.OrderProjection, error) {
	return s.list(func(o *domain.Order) bool { return o.VendorID == vendorID }), nil
}

func (s *Store) ListBySupplier(_ context.Context, supplierID uuid.UUID) ([]*ports.OrderProjection, error) {
	return s.list(func(o *domain.Order) bool { return o.SupplierID == supplierID }), nil
}

// Snapshot returns every order, newest first.
func (s *Store) Snapshot() []*ports.OrderProjection {
	return s.list(func(*domain.Order) bool { return true })
}

func (s *Store) UpdateStatus(_ context.Context, order *domain.Order, from domain.Status) (*ports.OrderProjection, error) {
	return s.update(order.ID, func(stored *domain.Order) error {
		if stored.Status != from {
			return ports.ErrStaleOrder
		}
		stored.Status = order.Status
		if order.ActualDelivery != nil {
			at := *order.ActualDelivery
			stored.ActualDelivery = &at
		}
		return nil
	})
}

func (s *Store) UpdatePayment(_ context.Context, order *domain.Order, from domain.PaymentStatus) (*ports.OrderProjection, error) {
	return s.update(order.ID, func(stored *domain.Order) error {
		if stored.PaymentStatus != from {
			return ports.ErrStaleOrder
		}
		stored.PaymentStatus = order.PaymentStatus
		return nil
	})
}

func (s *Store) SaveReview(_ context.Context, order *domain.Order) (*ports.OrderProjection, error) {
	if order.Review == nil {
		return nil, errors.New("order has no review")
	}
	return s.update(order.ID, func(stored *domain.Order) error {
		if stored.Status != domain.StatusDelivered || stored.Review != nil {
			return ports.ErrStaleOrder
		}
		review := *order.Review
		stored.Review = &review
		return nil
	})
}

// Get returns the idempotency record for key, or nil.
func (s *Store) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.keys[key]
	if !ok {
		return nil, nil
	}
	record.OrderIDs = append([]uuid.UUID(nil), record.OrderIDs...)
	return &record, nil
}

func (s *Store) update(id uuid.UUID, fn func(*domain.Order) error) (*ports.OrderProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := stored.order.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	stored.order = working
	stored.updatedAt = s.now()
	return stored.projection(), nil
}

func (s *Store) list(keep func(*domain.Order) bool) []*ports.OrderProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*entry, 0, len(s.orders))
	for _, stored := range s.orders {
		if keep(stored.order) {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].createdAt.After(matched[j].createdAt)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]*ports.OrderProjection, 0, len(matched))
	for _, stored := range matched {
		out = append(out, stored.projection())
	}
	return out
}

func (e *entry) projection() *ports.OrderProjection {
	p := projection.New(e.order.Clone(), e.createdAt, e.updatedAt)
	return &p
}

// unit buffers inserts until commit and remembers how to undo stock changes.
type unit struct {
	store   *Store
	orders  []*domain.Order
	keys    map[string]ports.IdempotencyRecord
	compens []func()
}

func (u *unit) LockProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	found, err := u.store.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return found.Entity, nil
}

func (u *unit) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	_, err := u.store.catalog.Adjust(id, func(p *catalogdomain.Product) error { return p.Take(qty) })
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return ports.ErrProductNotFound
		}
		return err
	}
	u.compens = append(u.compens, func() {
		_, _ = u.store.catalog.Adjust(id, func(p *catalogdomain.Product) error {
			p.Return(qty)
			return nil
		})
	})
	return nil
}

func (u *unit) InsertOrder(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	u.orders = append(u.orders, order.Clone())
	return nil
}

func (u *unit) ClaimIdempotencyKey(_ context.Context, record ports.IdempotencyRecord) error {
	u.store.mu.RLock()
	_, taken := u.store.keys[record.Key]
	u.store.mu.RUnlock()
	if _, pending := u.keys[record.Key]; taken || pending {
		return ports.ErrKeyClaimed
	}
	record.OrderIDs = append([]uuid.UUID(nil), record.OrderIDs...)
	u.keys[record.Key] = record
	return nil
}

func (u *unit) commit() {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, order := range u.orders {
		s.seq++
		s.orders[order.ID] = &entry{order: order, seq: s.seq, createdAt: now, updatedAt: now}
	}
	for key, record := range u.keys {
		s.keys[key] = record
	}
}

func (u *unit) rollback() {
	for i := len(u.compens) - 1; i >= 0; i-- {
		u.compens[i]()
	}
}
