package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
	"github.com/Apurer/ventrest-api/internal/shared/projection"
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates the catalog use cases.
type Service struct {
	repo      ports.Repository
	exporter  ports.Exporter
	predictor ports.PricePredictor
	newID     func() uuid.UUID
}

// Option customises optional collaborators.
type Option func(*Service)

// WithExporter enables supplier catalog exports.
func WithExporter(exporter ports.Exporter) Option {
	return func(s *Service) { s.exporter = exporter }
}

// WithPricePredictor enables price suggestions.
func WithPricePredictor(predictor ports.PricePredictor) Option {
	return func(s *Service) { s.predictor = predictor }
}

// WithIDGenerator overrides product ID generation for deterministic tests.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService wires the catalog service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, newID: uuid.New}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create registers a product owned by the calling supplier.
func (s *Service) Create(ctx context.Context, caller auth.Identity, input ports.CreateProductInput) (*ports.ProductProjection, error) {
	if !caller.IsSupplier() {
		return nil, fmt.Errorf("%w: only suppliers can list products", ErrForbidden)
	}
	product, err := buildProduct(s.newID(), caller.UserID, input.ProductMutationInput)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Update applies a partial mutation to a product the caller owns. The mutation
// runs against the current row so concurrent stock decrements are kept.
func (s *Service) Update(ctx context.Context, caller auth.Identity, input ports.UpdateProductInput) (*ports.ProductProjection, error) {
	return s.mutate(ctx, caller, input.ID, func(p *domain.Product) error {
		return applyMutation(p, input.ProductMutationInput)
	})
}

// Delete marks a product inactive. Products are never removed because orders reference them.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	_, err := s.mutate(ctx, caller, id, func(p *domain.Product) error {
		p.Deactivate()
		return nil
	})
	return err
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ports.ProductProjection, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// List returns active products matching the public catalog filters.
func (s *Service) List(ctx context.Context, input ports.ListProductsInput) ([]*ports.ProductProjection, error) {
	filter := ports.Filter{
		Statuses:   []domain.Status{domain.StatusActive},
		Search:     strings.TrimSpace(input.Search),
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		SupplierID: input.SupplierID,
	}
	if raw := strings.TrimSpace(input.Category); raw != "" && !strings.EqualFold(raw, "all") {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Category = category
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidInput)
	}
	if (filter.MinPrice != nil && filter.MinPrice.IsNegative()) || (filter.MaxPrice != nil && filter.MaxPrice.IsNegative()) {
		return nil, fmt.Errorf("%w: price bounds must not be negative", ErrInvalidInput)
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListMine returns every product of the calling supplier regardless of status.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]*ports.ProductProjection, error) {
	if !caller.IsSupplier() {
		return nil, fmt.Errorf("%w: only suppliers own products", ErrForbidden)
	}
	result, err := s.repo.List(ctx, ports.Filter{SupplierID: caller.UserID})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ExportMine writes the caller's catalog through the configured exporter.
func (s *Service) ExportMine(ctx context.Context, caller auth.Identity, w io.Writer) error {
	if s.exporter == nil {
		return errors.New("product export not configured")
	}
	products, err := s.ListMine(ctx, caller)
	if err != nil {
		return err
	}
	return s.exporter.Export(w, projection.Entities(products))
}

// SuggestPrice asks the price model for a suggestion on one of the caller's products.
func (s *Service) SuggestPrice(ctx context.Context, caller auth.Identity, input ports.PriceSuggestionInput) (*ports.PriceSuggestion, error) {
	current, err := s.owned(ctx, caller, input.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Day < 0 || input.Day > 31 {
		return nil, fmt.Errorf("%w: day must be between 0 and 31", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Weather) == "" || strings.TrimSpace(input.Demand) == "" {
		return nil, fmt.Errorf("%w: weather and demand are required", ErrInvalidInput)
	}
	if s.predictor == nil {
		return nil, ports.ErrPricingUnavailable
	}
	suggested, err := s.predictor.Predict(ctx, input.PriceQuery)
	if err != nil {
		if errors.Is(err, ports.ErrPricingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrPricingUnavailable, err)
	}
	return &ports.PriceSuggestion{
		ProductID:      current.Entity.ID,
		CurrentPrice:   current.Entity.Price,
		SuggestedPrice: suggested,
	}, nil
}

func (s *Service) owned(ctx context.Context, caller auth.Identity, id uuid.UUID) (*ports.ProductProjection, error) {
	if !caller.IsSupplier() {
		return nil, errNotSupplier
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := checkOwner(caller, current.Entity); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) mutate(ctx context.Context, caller auth.Identity, id uuid.UUID, fn func(*domain.Product) error) (*ports.ProductProjection, error) {
	if !caller.IsSupplier() {
		return nil, errNotSupplier
	}
	saved, err := s.repo.Update(ctx, id, func(p *domain.Product) error {
		if err := checkOwner(caller, p); err != nil {
			return err
		}
		return fn(p)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func checkOwner(caller auth.Identity, p *domain.Product) error {
	if p.SupplierID != caller.UserID {
		return fmt.Errorf("%w: product belongs to another supplier", ErrForbidden)
	}
	return nil
}

func buildProduct(id, supplierID uuid.UUID, input ports.ProductMutationInput) (*domain.Product, error) {
	switch {
	case input.Name == nil:
		return nil, domain.ErrEmptyName
	case input.Price == nil:
		return nil, fmt.Errorf("%w: price is required", ErrInvalidInput)
	case input.Category == nil:
		return nil, domain.ErrInvalidCategory
	case input.Unit == nil:
		return nil, domain.ErrInvalidUnit
	}
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	product, err := domain.NewProduct(id, supplierID, *input.Name, *input.Price, domain.Category(*input.Category), stock, domain.Unit(*input.Unit))
	if err != nil {
		return nil, err
	}
	rest := input
	rest.Name, rest.Price, rest.Category, rest.Unit, rest.Stock = nil, nil, nil, nil, nil
	if err := applyMutation(product, rest); err != nil {
		return nil, err
	}
	return product, nil
}

func applyMutation(target *domain.Product, input ports.ProductMutationInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Description != nil {
		target.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if err := target.Reprice(*input.Price); err != nil {
			return err
		}
	}
	if input.Category != nil {
		if err := target.ChangeCategory(domain.Category(*input.Category)); err != nil {
			return err
		}
	}
	if input.Unit != nil {
		if err := target.ChangeUnit(domain.Unit(*input.Unit)); err != nil {
			return err
		}
	}
	if input.Status != nil {
		if err := target.ChangeStatus(domain.Status(*input.Status)); err != nil {
			return err
		}
	}
	if input.Stock != nil {
		if err := target.Restock(*input.Stock); err != nil {
			return err
		}
	}
	if input.MinOrderQuantity != nil {
		if err := target.SetMinOrderQuantity(*input.MinOrderQuantity); err != nil {
			return err
		}
	}
	if input.BulkDiscounts != nil {
		tiers := make([]domain.DiscountTier, 0, len(*input.BulkDiscounts))
		for _, tier := range *input.BulkDiscounts {
			tiers = append(tiers, domain.DiscountTier{MinQuantity: tier.MinQuantity, DiscountPercent: tier.DiscountPercent})
		}
		if err := target.ReplaceDiscountTiers(tiers); err != nil {
			return err
		}
	}
	if input.ImageURL != nil {
		target.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Tags != nil {
		target.ReplaceTags(*input.Tags)
	}
	if input.Featured != nil {
		target.Featured = *input.Featured
	}
	return nil
}
