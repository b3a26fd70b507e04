package ventrestserver

import (
	"time"

	"github.com/shopspring/decimal"

	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

type DiscountTier struct {
	MinQuantity     int             `json:"minQuantity"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// ProductRequest is shared by create and update; omitted fields stay untouched on update.
type ProductRequest struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Category         *string          `json:"category,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	Status           *string          `json:"status,omitempty"`
	MinOrderQuantity *int             `json:"minOrderQuantity,omitempty"`
	BulkDiscounts    *[]DiscountTier  `json:"bulkDiscounts,omitempty"`
	ImageURL         *string          `json:"image,omitempty"`
	Tags             *[]string        `json:"tags,omitempty"`
	Featured         *bool            `json:"featured,omitempty"`
}

type Product struct {
	ID               string         `json:"id"`
	SupplierID       string         `json:"supplierId"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Price            string         `json:"price"`
	Category         string         `json:"category"`
	Stock            int            `json:"stock"`
	Unit             string         `json:"unit"`
	Status           string         `json:"status"`
	Rating           string         `json:"rating"`
	ReviewCount      int            `json:"reviewCount"`
	MinOrderQuantity int            `json:"minOrderQuantity"`
	BulkDiscounts    []DiscountTier `json:"bulkDiscounts"`
	ImageURL         string         `json:"image,omitempty"`
	Tags             []string       `json:"tags"`
	Featured         bool           `json:"featured"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type PriceSuggestionRequest struct {
	Day     int    `json:"day"`
	Weather string `json:"weather"`
	Demand  string `json:"demand"`
}

type PriceSuggestion struct {
	ProductID      string `json:"productId"`
	CurrentPrice   string `json:"currentPrice"`
	SuggestedPrice string `json:"suggestedPrice"`
}

func (r ProductRequest) toMutation() catalogports.ProductMutationInput {
	in := catalogports.ProductMutationInput{
		Name:             r.Name,
		Description:      r.Description,
		Price:            r.Price,
		Category:         r.Category,
		Stock:            r.Stock,
		Unit:             r.Unit,
		Status:           r.Status,
		MinOrderQuantity: r.MinOrderQuantity,
		ImageURL:         r.ImageURL,
		Tags:             r.Tags,
		Featured:         r.Featured,
	}
	if r.BulkDiscounts != nil {
		tiers := make([]catalogports.DiscountTierInput, 0, len(*r.BulkDiscounts))
		for _, t := range *r.BulkDiscounts {
			tiers = append(tiers, catalogports.DiscountTierInput(t))
		}
		in.BulkDiscounts = &tiers
	}
	return in
}

func fromProduct(p *catalogports.ProductProjection) Product {
	e := p.Entity
	tiers := make([]DiscountTier, 0, len(e.BulkDiscounts))
	for _, t := range e.BulkDiscounts {
		tiers = append(tiers, DiscountTier(t))
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return Product{
		ID:               e.ID.String(),
		SupplierID:       e.SupplierID.String(),
		Name:             e.Name,
		Description:      e.Description,
		Price:            e.Price.StringFixed(2),
		Category:         string(e.Category),
		Stock:            e.Stock,
		Unit:             string(e.Unit),
		Status:           string(e.Status),
		Rating:           e.Rating.StringFixed(1),
		ReviewCount:      e.ReviewCount,
		MinOrderQuantity: e.MinOrderQuantity,
		BulkDiscounts:    tiers,
		ImageURL:         e.ImageURL,
		Tags:             tags,
		Featured:         e.Featured,
		CreatedAt:        p.Metadata.CreatedAt,
		UpdatedAt:        p.Metadata.UpdatedAt,
	}
}

func fromProducts(list []*catalogports.ProductProjection) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		if p != nil {
			out = append(out, fromProduct(p))
		}
	}
	return out
}

func fromSuggestion(s *catalogports.PriceSuggestion) PriceSuggestion {
	return PriceSuggestion{
		ProductID:      s.ProductID.String(),
		CurrentPrice:   s.CurrentPrice.StringFixed(2),
		SuggestedPrice: s.SuggestedPrice.StringFixed(2),
	}
}
