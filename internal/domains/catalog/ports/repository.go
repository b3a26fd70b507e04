package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var ErrNotFound = errors.New("product not found")

// ProductProjection is a product plus its persistence timestamps.
type ProductProjection = projection.Projection[*domain.Product]

// Filter narrows a product listing. Zero values do not filter.
type Filter struct {
	Statuses   []domain.Status
	Category   domain.Category
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SupplierID uuid.UUID
}

// Repository persists products. Listings are ordered newest first.
//
// Save never overwrites the stock of an existing product. Stock only changes
// through Update, which applies fn to the current row under a lock, and through
// the order writer's conditional decrement.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*ProductProjection, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*ProductProjection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductProjection, error)
	List(ctx context.Context, filter Filter) ([]*ProductProjection, error)
}
