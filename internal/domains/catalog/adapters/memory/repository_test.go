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

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

func mustProduct(t *testing.T, supplier uuid.UUID, name string, price int64, category domain.Category) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(uuid.New(), supplier, name, decimal.NewFromInt(price), category, 10, domain.UnitPiece)
	require.NoError(t, err)
	return p
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	repo := NewRepository()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock })
	ctx := context.Background()
	supplier := uuid.New()

	chai := mustProduct(t, supplier, "Masala Chai", 20, domain.CategoryBeverages)
	chai.Description = "spiced tea"
	lassi := mustProduct(t, supplier, "Lassi", 60, domain.CategoryBeverages)
	samosa := mustProduct(t, uuid.New(), "Samosa", 15, domain.CategorySnacks)
	for _, p := range []*domain.Product{chai, lassi, samosa} {
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, ports.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, samosa.ID, all[0].Entity.ID)

	beverages, err := repo.List(ctx, ports.Filter{Category: domain.CategoryBeverages, SupplierID: supplier})
	require.NoError(t, err)
	assert.Len(t, beverages, 2)

	ceiling := decimal.NewFromInt(30)
	cheap, err := repo.List(ctx, ports.Filter{MaxPrice: &ceiling})
	require.NoError(t, err)
	assert.Len(t, cheap, 2)

	tea, err := repo.List(ctx, ports.Filter{Search: "tea"})
	require.NoError(t, err)
	require.Len(t, tea, 1)
	assert.Equal(t, chai.ID, tea[0].Entity.ID)
}

func TestAdjustOnlyCommitsOnSuccess(t *testing.T) {
	repo := NewRepository()
	p := mustProduct(t, uuid.New(), "Jalebi", 40, domain.CategoryDesserts)
	_, err := repo.Save(context.Background(), p)
	require.NoError(t, err)

	_, err = repo.Adjust(p.ID, func(prod *domain.Product) error {
		prod.Stock = 0
		return errors.New("abort")
	})
	require.Error(t, err)

	updated, err := repo.Adjust(p.ID, func(prod *domain.Product) error { return prod.Take(4) })
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Stock)

	_, err = repo.Adjust(uuid.New(), func(*domain.Product) error { return nil })
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSaveStoresCopies(t *testing.T) {
	repo := NewRepository()
	p := mustProduct(t, uuid.New(), "Kulfi", 30, domain.CategoryDesserts)
	_, err := repo.Save(context.Background(), p)
	require.NoError(t, err)

	p.Name = "mutated"
	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kulfi", stored.Entity.Name)
}

func TestSaveKeepsStoredStock(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := mustProduct(t, uuid.New(), "Rabri", 50, domain.CategoryDesserts)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)
	_, err = repo.Adjust(p.ID, func(prod *domain.Product) error { return prod.Take(10) })
	require.NoError(t, err)

	p.Name = "Kesar Rabri"
	saved, err := repo.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Kesar Rabri", saved.Entity.Name)
	assert.Equal(t, 0, saved.Entity.Stock)
	assert.Equal(t, domain.StatusOutOfStock, saved.Entity.Status)
}

func TestUpdateAppliesToCurrentProduct(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := mustProduct(t, uuid.New(), "Gulab Jamun", 35, domain.CategoryDesserts)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)
	_, err = repo.Adjust(p.ID, func(prod *domain.Product) error { return prod.Take(3) })
	require.NoError(t, err)

	updated, err := repo.Update(ctx, p.ID, func(prod *domain.Product) error { return prod.Rename("Kala Jamun") })
	require.NoError(t, err)
	assert.Equal(t, "Kala Jamun", updated.Entity.Name)
	assert.Equal(t, 7, updated.Entity.Stock)

	_, err = repo.Update(ctx, p.ID, func(prod *domain.Product) error {
		prod.Name = "discarded"
		return errors.New("abort")
	})
	require.Error(t, err)
	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kala Jamun", stored.Entity.Name)

	_, err = repo.Update(ctx, uuid.New(), func(*domain.Product) error { return nil })
	require.ErrorIs(t, err, ports.ErrNotFound)
}
