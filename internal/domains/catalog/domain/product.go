package domain

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the marketplace catalog.
type Category string

const (
	CategoryStreetFood  Category = "street-food"
	CategoryBeverages   Category = "beverages"
	CategorySnacks      Category = "snacks"
	CategoryDesserts    Category = "desserts"
	CategoryIngredients Category = "ingredients"
)

// Unit is the measure a product is sold in.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitPiece      Unit = "piece"
	UnitPack       Unit = "pack"
)

// Status represents the sellability of a product.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOutOfStock Status = "out-of-stock"
)

// DiscountTier advertises a percentage off above a quantity threshold.
// Tiers are informational; order totals always use the list price.
type DiscountTier struct {
	MinQuantity     int
	DiscountPercent decimal.Decimal
}

// Product is the aggregate owned by one supplier.
type Product struct {
	ID               uuid.UUID
	SupplierID       uuid.UUID
	Name             string
	Description      string
	Price            decimal.Decimal
	Category         Category
	Stock            int
	Unit             Unit
	Status           Status
	Rating           decimal.Decimal
	ReviewCount      int
	MinOrderQuantity int
	BulkDiscounts    []DiscountTier
	ImageURL         string
	Tags             []string
	Featured         bool
}

var (
	ErrEmptyName           = errors.New("product name is required")
	ErrMissingSupplier     = errors.New("product supplier is required")
	ErrNegativePrice       = errors.New("price must be greater or equal to zero")
	ErrPricePrecision      = errors.New("price must not have more than two decimal places")
	ErrNegativeStock       = errors.New("stock must be greater or equal to zero")
	ErrInvalidCategory     = errors.New("unknown product category")
	ErrInvalidUnit         = errors.New("unknown product unit")
	ErrInvalidStatus       = errors.New("unknown product status")
	ErrInvalidMinOrder     = errors.New("minimum order quantity must be at least 1")
	ErrInvalidDiscountTier = errors.New("discount tiers need a quantity of at least 1, a percentage in (0, 100] with at most two decimals and unique quantities")
	ErrInvalidRating       = errors.New("rating must be between 0 and 5")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

var hundred = decimal.NewFromInt(100)

// NewProduct validates the invariants and builds an active product.
func NewProduct(id, supplierID uuid.UUID, name string, price decimal.Decimal, category Category, stock int, unit Unit) (*Product, error) {
	if supplierID == uuid.Nil {
		return nil, ErrMissingSupplier
	}
	p := &Product{ID: id, SupplierID: supplierID, Status: StatusActive, MinOrderQuantity: 1}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if err := p.ChangeCategory(category); err != nil {
		return nil, err
	}
	if err := p.ChangeUnit(unit); err != nil {
		return nil, err
	}
	if err := p.Restock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseCategory validates a raw category value.
func ParseCategory(raw string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch category {
	case CategoryStreetFood, CategoryBeverages, CategorySnacks, CategoryDesserts, CategoryIngredients:
		return category, nil
	default:
		return "", ErrInvalidCategory
	}
}

// ParseUnit validates a raw unit value.
func ParseUnit(raw string) (Unit, error) {
	unit := Unit(strings.ToLower(strings.TrimSpace(raw)))
	switch unit {
	case UnitKilogram, UnitGram, UnitLiter, UnitMilliliter, UnitPiece, UnitPack:
		return unit, nil
	default:
		return "", ErrInvalidUnit
	}
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusActive, StatusInactive, StatusOutOfStock:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Rename mutates the product name ensuring the invariant.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Reprice sets the list price. Prices are whole cents so line totals stay exact.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if !inCents(price) {
		return ErrPricePrecision
	}
	p.Price = price.Round(2)
	return nil
}

func inCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func (p *Product) ChangeCategory(category Category) error {
	parsed, err := ParseCategory(string(category))
	if err != nil {
		return err
	}
	p.Category = parsed
	return nil
}

func (p *Product) ChangeUnit(unit Unit) error {
	parsed, err := ParseUnit(string(unit))
	if err != nil {
		return err
	}
	p.Unit = parsed
	return nil
}

// Restock overwrites the stock level. An out-of-stock product that regains
// stock becomes active again and an active product at zero is out of stock.
func (p *Product) Restock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	p.syncStockStatus()
	return nil
}

// ChangeStatus applies a supplier-chosen status. Out-of-stock is derived from
// the stock level and cannot be forced onto a product that still has stock.
func (p *Product) ChangeStatus(status Status) error {
	parsed, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	if parsed == StatusOutOfStock && p.Stock > 0 {
		parsed = StatusActive
	}
	p.Status = parsed
	p.syncStockStatus()
	return nil
}

// Deactivate soft-deletes the product.
func (p *Product) Deactivate() {
	p.Status = StatusInactive
}

// SetMinOrderQuantity sets the smallest quantity a single order line may ask for.
func (p *Product) SetMinOrderQuantity(qty int) error {
	if qty < 1 {
		return ErrInvalidMinOrder
	}
	p.MinOrderQuantity = qty
	return nil
}

// ReplaceDiscountTiers validates and stores tiers sorted by quantity.
func (p *Product) ReplaceDiscountTiers(tiers []DiscountTier) error {
	seen := make(map[int]struct{}, len(tiers))
	sorted := make([]DiscountTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.MinQuantity < 1 || !tier.DiscountPercent.IsPositive() || tier.DiscountPercent.GreaterThan(hundred) || !inCents(tier.DiscountPercent) {
			return ErrInvalidDiscountTier
		}
		if _, dup := seen[tier.MinQuantity]; dup {
			return ErrInvalidDiscountTier
		}
		seen[tier.MinQuantity] = struct{}{}
		sorted = append(sorted, tier)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinQuantity < sorted[j].MinQuantity })
	p.BulkDiscounts = sorted
	return nil
}

// DiscountFor returns the advertised percentage for qty, zero when no tier applies.
func (p *Product) DiscountFor(qty int) decimal.Decimal {
	best := decimal.Zero
	for _, tier := range p.BulkDiscounts {
		if qty >= tier.MinQuantity {
			best = tier.DiscountPercent
		}
	}
	return best
}

// SetRating records the aggregated review score.
func (p *Product) SetRating(rating decimal.Decimal, reviews int) error {
	if rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) || reviews < 0 {
		return ErrInvalidRating
	}
	p.Rating = rating
	p.ReviewCount = reviews
	return nil
}

// ReplaceTags swaps the current tag set, dropping blanks and duplicates.
func (p *Product) ReplaceTags(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	p.Tags = cleaned
}

// IsAvailable reports whether orders may reference the product at all.
func (p *Product) IsAvailable() bool {
	return p.Status != StatusInactive
}

// Take removes qty units, failing when fewer are on hand.
func (p *Product) Take(qty int) error {
	if qty < 1 {
		return ErrInvalidMinOrder
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	p.syncStockStatus()
	return nil
}

// Return puts qty units back on hand.
func (p *Product) Return(qty int) {
	if qty < 1 {
		return
	}
	p.Stock += qty
	p.syncStockStatus()
}

func (p *Product) syncStockStatus() {
	switch {
	case p.Stock == 0 && p.Status == StatusActive:
		p.Status = StatusOutOfStock
	case p.Stock > 0 && p.Status == StatusOutOfStock:
		p.Status = StatusActive
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.BulkDiscounts = append([]DiscountTier(nil), p.BulkDiscounts...)
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}
