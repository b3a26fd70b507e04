// Package memory computes dashboards by scanning in-memory stores.
package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
	ordersdomain "github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

// OrderSnapshotter lists every stored order, newest first.
type OrderSnapshotter interface {
	Snapshot() []*ordersports.OrderProjection
}

// ProductSnapshotter lists every stored product.
type ProductSnapshotter interface {
	Snapshot() []*catalogdomain.Product
}

// Source implements ports.Source over snapshots.
type Source struct {
	orders   OrderSnapshotter
	products ProductSnapshotter
}

var _ ports.Source = (*Source)(nil)

// NewSource reads from the given order and product stores.
func NewSource(orders OrderSnapshotter, products ProductSnapshotter) *Source {
	return &Source{orders: orders, products: products}
}

func (s *Source) Totals(_ context.Context, scope ports.Scope, monthStart time.Time) (domain.Totals, error) {
	totals := domain.Totals{Volume: decimal.Zero, MonthVolume: decimal.Zero}
	for _, p := range s.scoped(scope) {
		o := p.Entity
		thisMonth := !p.Metadata.CreatedAt.Before(monthStart)
		totals.Orders++
		if thisMonth {
			totals.MonthOrders++
		}
		if !o.Status.Counts() {
			continue
		}
		totals.Volume = totals.Volume.Add(o.TotalAmount)
		if thisMonth {
			totals.MonthVolume = totals.MonthVolume.Add(o.TotalAmount)
		}
	}
	return totals, nil
}

func (s *Source) RecentOrders(_ context.Context, scope ports.Scope, limit int) ([]*ordersports.OrderProjection, error) {
	scoped := s.scoped(scope)
	if limit > 0 && len(scoped) > limit {
		scoped = scoped[:limit]
	}
	return scoped, nil
}

func (s *Source) CategoryBreakdown(_ context.Context, scope ports.Scope) ([]domain.CategoryTotal, error) {
	catalog := s.catalog()
	index := map[string]int{}
	var out []domain.CategoryTotal
	for _, p := range s.scoped(scope) {
		if p.Entity.Status == ordersdomain.StatusCancelled {
			continue
		}
		for _, item := range p.Entity.Items {
			product, ok := catalog[item.ProductID]
			if !ok {
				continue
			}
			category := string(product.Category)
			i, seen := index[category]
			if !seen {
				i = len(out)
				index[category] = i
				out = append(out, domain.CategoryTotal{Category: category, Amount: decimal.Zero})
			}
			out[i].Amount = out[i].Amount.Add(item.LineTotal)
			out[i].Units += item.Quantity
		}
	}
	return out, nil
}

func (s *Source) TopProducts(_ context.Context, supplierID uuid.UUID, limit int) ([]domain.ProductSales, error) {
	catalog := s.catalog()
	index := map[uuid.UUID]int{}
	var out []domain.ProductSales
	for _, p := range s.scoped(ports.SupplierScope(supplierID)) {
		if p.Entity.Status == ordersdomain.StatusCancelled {
			continue
		}
		for _, item := range p.Entity.Items {
			product, ok := catalog[item.ProductID]
			if !ok {
				continue
			}
			i, seen := index[item.ProductID]
			if !seen {
				i = len(out)
				index[item.ProductID] = i
				out = append(out, domain.ProductSales{ProductID: item.ProductID, Name: product.Name, Revenue: decimal.Zero})
			}
			out[i].UnitsSold += item.Quantity
			out[i].Revenue = out[i].Revenue.Add(item.LineTotal)
		}
	}
	return domain.RankProducts(out, limit), nil
}

func (s *Source) ProductCounts(_ context.Context, supplierID uuid.UUID) (domain.ProductCounts, error) {
	var counts domain.ProductCounts
	for _, p := range s.products.Snapshot() {
		if p.SupplierID != supplierID {
			continue
		}
		counts.Total++
		if p.Status == catalogdomain.StatusActive {
			counts.Active++
		}
	}
	return counts, nil
}

func (s *Source) scoped(scope ports.Scope) []*ordersports.OrderProjection {
	var out []*ordersports.OrderProjection
	for _, p := range s.orders.Snapshot() {
		owner := p.Entity.VendorID
		if scope.Side == ports.SideSupplier {
			owner = p.Entity.SupplierID
		}
		if owner == scope.UserID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Source) catalog() map[uuid.UUID]*catalogdomain.Product {
	products := s.products.Snapshot()
	out := make(map[uuid.UUID]*catalogdomain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out
}
