package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

var (
	// ErrInvalidInput signals a malformed dashboard request.
	ErrInvalidInput = errors.New("invalid analytics input")
	// ErrForbidden signals the caller's role cannot read the dashboard.
	ErrForbidden = errors.New("analytics access forbidden")
)

// Service computes dashboards from the order history.
type Service struct {
	source ports.Source
	now    func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithClock overrides the time source used for month boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the analytics read model.
func NewService(source ports.Source, opts ...Option) *Service {
	s := &Service{source: source, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Service = (*Service)(nil)

func (s *Service) VendorSummary(ctx context.Context, caller auth.Identity, limit int) (*ports.VendorSummary, error) {
	if !caller.IsVendor() {
		return nil, ErrForbidden
	}
	limit, err := domain.NormalizeLimit(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	scope := ports.VendorScope(caller.UserID)
	totals, err := s.source.Totals(ctx, scope, domain.MonthStart(s.now()))
	if err != nil {
		return nil, err
	}
	recent, err := s.source.RecentOrders(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	categories, err := s.source.CategoryBreakdown(ctx, scope)
	if err != nil {
		return nil, err
	}
	domain.SortCategories(categories)
	return &ports.VendorSummary{
		TotalOrders:       totals.Orders,
		ThisMonthOrders:   totals.MonthOrders,
		TotalSpent:        totals.Volume,
		ThisMonthSpent:    totals.MonthVolume,
		RecentOrders:      nonNil(recent),
		CategoryBreakdown: nonNil(categories),
	}, nil
}

func (s *Service) SupplierSummary(ctx context.Context, caller auth.Identity, limit int) (*ports.SupplierSummary, error) {
	if !caller.IsSupplier() {
		return nil, ErrForbidden
	}
	limit, err := domain.NormalizeLimit(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	scope := ports.SupplierScope(caller.UserID)
	counts, err := s.source.ProductCounts(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	totals, err := s.source.Totals(ctx, scope, domain.MonthStart(s.now()))
	if err != nil {
		return nil, err
	}
	recent, err := s.source.RecentOrders(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	categories, err := s.source.CategoryBreakdown(ctx, scope)
	if err != nil {
		return nil, err
	}
	domain.SortCategories(categories)
	top, err := s.source.TopProducts(ctx, caller.UserID, limit)
	if err != nil {
		return nil, err
	}
	return &ports.SupplierSummary{
		TotalProducts:     counts.Total,
		ActiveProducts:    counts.Active,
		TotalOrders:       totals.Orders,
		ThisMonthOrders:   totals.MonthOrders,
		TotalRevenue:      totals.Volume,
		ThisMonthRevenue:  totals.MonthVolume,
		RecentOrders:      nonNil(recent),
		CategoryBreakdown: nonNil(categories),
		TopProducts:       nonNil(domain.RankProducts(top, limit)),
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
