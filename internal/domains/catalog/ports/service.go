package ports

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// DiscountTierInput mirrors domain.DiscountTier at the service boundary.
type DiscountTierInput struct {
	MinQuantity     int
	DiscountPercent decimal.Decimal
}

// ProductMutationInput carries optional product fields; nil leaves a field untouched on update.
type ProductMutationInput struct {
	Name             *string
	Description      *string
	Price            *decimal.Decimal
	Category         *string
	Stock            *int
	Unit             *string
	Status           *string
	MinOrderQuantity *int
	BulkDiscounts    *[]DiscountTierInput
	ImageURL         *string
	Tags             *[]string
	Featured         *bool
}

// CreateProductInput registers a new product for the calling supplier.
type CreateProductInput struct {
	ProductMutationInput
}

// UpdateProductInput mutates a product owned by the calling supplier.
type UpdateProductInput struct {
	ID uuid.UUID
	ProductMutationInput
}

// ListProductsInput holds the public catalog query.
type ListProductsInput struct {
	Category   string
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SupplierID uuid.UUID
}

// PriceSuggestionInput asks for a suggested price for one of the caller's products.
type PriceSuggestionInput struct {
	ProductID uuid.UUID
	PriceQuery
}

// PriceSuggestion pairs the current price with the model's suggestion.
type PriceSuggestion struct {
	ProductID      uuid.UUID
	CurrentPrice   decimal.Decimal
	SuggestedPrice decimal.Decimal
}

// Service defines the catalog use cases exposed to adapters.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, input CreateProductInput) (*ProductProjection, error)
	Update(ctx context.Context, caller auth.Identity, input UpdateProductInput) (*ProductProjection, error)
	Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductProjection, error)
	List(ctx context.Context, input ListProductsInput) ([]*ProductProjection, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]*ProductProjection, error)
	ExportMine(ctx context.Context, caller auth.Identity, w io.Writer) error
	SuggestPrice(ctx context.Context, caller auth.Identity, input PriceSuggestionInput) (*PriceSuggestion, error)
}
