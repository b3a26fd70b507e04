//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/platform/postgres/postgrestest"
)

func TestRepository_SaveAndGetByID(t *testing.T) {
	db := postgrestest.Start(t)
	supplier := uuid.New()
	postgrestest.SeedUser(t, db, supplier.String(), "supplier")
	repo := NewRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct(uuid.New(), supplier, "Masala Chai", decimal.RequireFromString("25.50"), domain.CategoryBeverages, 40, domain.UnitPiece)
	require.NoError(t, err)
	require.NoError(t, product.ReplaceDiscountTiers([]domain.DiscountTier{{MinQuantity: 20, DiscountPercent: decimal.NewFromInt(5)}}))
	product.ReplaceTags([]string{"hot", "spiced"})

	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.True(t, saved.Entity.Price.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, []string{"hot", "spiced"}, saved.Entity.Tags)
	require.Len(t, saved.Entity.BulkDiscounts, 1)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	updated, err := repo.Update(ctx, product.ID, func(p *domain.Product) error {
		p.Deactivate()
		return p.Restock(12)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, updated.Entity.Status)
	assert.Equal(t, 12, updated.Entity.Stock)
	assert.True(t, saved.Metadata.CreatedAt.Equal(updated.Metadata.CreatedAt))

	stale := saved.Entity
	require.NoError(t, stale.Rename("Kadak Chai"))
	resaved, err := repo.Save(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, "Kadak Chai", resaved.Entity.Name)
	assert.Equal(t, 12, resaved.Entity.Stock)

	_, err = repo.Update(ctx, uuid.New(), func(*domain.Product) error { return nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListFilters(t *testing.T) {
	db := postgrestest.Start(t)
	supplier := uuid.New()
	postgrestest.SeedUser(t, db, supplier.String(), "supplier")
	repo := NewRepository(db)
	ctx := context.Background()

	seed := func(name string, price int64, category domain.Category) *domain.Product {
		p, err := domain.NewProduct(uuid.New(), supplier, name, decimal.NewFromInt(price), category, 5, domain.UnitPiece)
		require.NoError(t, err)
		_, err = repo.Save(ctx, p)
		require.NoError(t, err)
		return p
	}
	seed("Pani Puri 100%", 30, domain.CategoryStreetFood)
	seed("Vada Pav", 20, domain.CategoryStreetFood)
	inactive := seed("Rose Falooda", 80, domain.CategoryDesserts)
	inactive.Deactivate()
	_, err := repo.Save(ctx, inactive)
	require.NoError(t, err)

	active, err := repo.List(ctx, ports.Filter{Statuses: []domain.Status{domain.StatusActive}})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	floor := decimal.NewFromInt(25)
	pricey, err := repo.List(ctx, ports.Filter{MinPrice: &floor, Category: domain.CategoryStreetFood})
	require.NoError(t, err)
	require.Len(t, pricey, 1)
	assert.Equal(t, "Pani Puri 100%", pricey[0].Entity.Name)

	literal, err := repo.List(ctx, ports.Filter{Search: "100%"})
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	mine, err := repo.List(ctx, ports.Filter{SupplierID: supplier})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
