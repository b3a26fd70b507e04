package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func seededStore(t *testing.T, stock int) (*Store, *catalogmemory.Repository, *catalogdomain.Product) {
	t.Helper()
	catalog := catalogmemory.NewRepository()
	product, err := catalogdomain.NewProduct(uuid.New(), uuid.New(), "Chai masala", decimal.NewFromInt(80), catalogdomain.CategoryBeverages, stock, catalogdomain.UnitPack)
	require.NoError(t, err)
	_, err = catalog.Save(context.Background(), product)
	require.NoError(t, err)
	return NewStore(catalog), catalog, product
}

func newOrder(t *testing.T, product *catalogdomain.Product, qty int) *domain.Order {
	t.Helper()
	item, err := domain.NewLineItem(product.ID, product.Name, qty, product.Price)
	require.NoError(t, err)
	order, err := domain.NewOrder(uuid.New(), uuid.New(), product.SupplierID, []domain.LineItem{item}, domain.Address{})
	require.NoError(t, err)
	return order
}

func TestUnitRollsBackStockAndOrders(t *testing.T) {
	ctx := context.Background()
	store, catalog, product := seededStore(t, 5)
	boom := errors.New("boom")

	err := store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		require.NoError(t, tx.DecrementStock(ctx, product.ID, 3))
		require.NoError(t, tx.InsertOrder(ctx, newOrder(t, product, 3)))
		require.NoError(t, tx.ClaimIdempotencyKey(ctx, ports.IdempotencyRecord{Key: "k"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := catalog.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Entity.Stock)
	assert.Empty(t, store.Snapshot())
	record, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestUnitDecrementIsConditional(t *testing.T) {
	ctx := context.Background()
	store, _, product := seededStore(t, 2)
	err := store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		return tx.DecrementStock(ctx, product.ID, 3)
	})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	err = store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.LockProduct(ctx, uuid.New())
		return err
	})
	require.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestClaimedKeyCannotBeClaimedTwice(t *testing.T) {
	ctx := context.Background()
	store, _, _ := seededStore(t, 1)
	claim := func() error {
		return store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
			return tx.ClaimIdempotencyKey(ctx, ports.IdempotencyRecord{Key: "same", RequestHash: "h"})
		})
	}
	require.NoError(t, claim())
	require.ErrorIs(t, claim(), ports.ErrKeyClaimed)
}

func TestStatusUpdateIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store, _, product := seededStore(t, 5)
	order := newOrder(t, product, 1)
	require.NoError(t, store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		return tx.InsertOrder(ctx, order)
	}))

	first := order.Clone()
	require.NoError(t, first.TransitionTo(auth.RoleSupplier, domain.StatusConfirmed, time.Now()))
	second := order.Clone()
	require.NoError(t, second.TransitionTo(auth.RoleSupplier, domain.StatusCancelled, time.Now()))

	_, err := store.UpdateStatus(ctx, first, domain.StatusPending)
	require.NoError(t, err)
	_, err = store.UpdateStatus(ctx, second, domain.StatusPending)
	require.ErrorIs(t, err, ports.ErrStaleOrder)

	stored, err := store.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Entity.Status)
}

func TestListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _, product := seededStore(t, 5)
	clock := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return clock })

	older := newOrder(t, product, 1)
	newer := newOrder(t, product, 1)
	newer.VendorID = older.VendorID
	for _, o := range []*domain.Order{older, newer} {
		require.NoError(t, store.Do(ctx, func(ctx context.Context, tx ports.Tx) error { return tx.InsertOrder(ctx, o) }))
		clock = clock.Add(time.Minute)
	}

	listed, err := store.ListByVendor(ctx, older.VendorID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].Entity.ID)
	assert.Equal(t, older.ID, listed[1].Entity.ID)
}
