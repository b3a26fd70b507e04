// Package ports declares the analytics use cases and the read model they depend on.
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// VendorSummary is the vendor dashboard.
type VendorSummary struct {
	TotalOrders       int
	ThisMonthOrders   int
	TotalSpent        decimal.Decimal
	ThisMonthSpent    decimal.Decimal
	RecentOrders      []*ordersports.OrderProjection
	CategoryBreakdown []domain.CategoryTotal
}

// SupplierSummary is the supplier dashboard.
type SupplierSummary struct {
	TotalProducts     int
	ActiveProducts    int
	TotalOrders       int
	ThisMonthOrders   int
	TotalRevenue      decimal.Decimal
	ThisMonthRevenue  decimal.Decimal
	RecentOrders      []*ordersports.OrderProjection
	CategoryBreakdown []domain.CategoryTotal
	TopProducts       []domain.ProductSales
}

// Service exposes the analytics use cases. A zero limit means the default.
type Service interface {
	VendorSummary(ctx context.Context, caller auth.Identity, limit int) (*VendorSummary, error)
	SupplierSummary(ctx context.Context, caller auth.Identity, limit int) (*SupplierSummary, error)
}
