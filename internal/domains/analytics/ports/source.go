package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

// Side selects whose orders a query reads.
type Side int

const (
	SideVendor Side = iota
	SideSupplier
)

// Scope is one party's slice of the order history.
type Scope struct {
	Side   Side
	UserID uuid.UUID
}

// VendorScope reads the orders a vendor placed.
func VendorScope(id uuid.UUID) Scope { return Scope{Side: SideVendor, UserID: id} }

// SupplierScope reads the orders a supplier received.
func SupplierScope(id uuid.UUID) Scope { return Scope{Side: SideSupplier, UserID: id} }

// Source is the read model behind the dashboards.
// Category breakdown and product sales join line items to the current product row
// and skip cancelled orders.
type Source interface {
	Totals(ctx context.Context, scope Scope, monthStart time.Time) (domain.Totals, error)
	RecentOrders(ctx context.Context, scope Scope, limit int) ([]*ordersports.OrderProjection, error)
	CategoryBreakdown(ctx context.Context, scope Scope) ([]domain.CategoryTotal, error)
	TopProducts(ctx context.Context, supplierID uuid.UUID, limit int) ([]domain.ProductSales, error)
	ProductCounts(ctx context.Context, supplierID uuid.UUID) (domain.ProductCounts, error)
}
