package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
	orderspostgres "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/persistence/postgres"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
)

var _ ports.Source = (*Source)(nil)

// Source runs the dashboard aggregations in PostgreSQL.
type Source struct {
	db     *gorm.DB
	orders *orderspostgres.Repository
}

// NewSource wires the read model. Caller manages DB lifecycle.
func NewSource(db *gorm.DB) *Source {
	return &Source{db: db, orders: orderspostgres.NewRepository(db)}
}

type totalsRow struct {
	Orders      int
	MonthOrders int
	Volume      decimal.Decimal
	MonthVolume decimal.Decimal
}

const totalsQuery = `
SELECT COUNT(*) AS orders,
       COUNT(*) FILTER (WHERE created_at >= @since) AS month_orders,
       COALESCE(SUM(total_amount) FILTER (WHERE status IN ('shipped', 'delivered')), 0) AS volume,
       COALESCE(SUM(total_amount) FILTER (WHERE status IN ('shipped', 'delivered') AND created_at >= @since), 0) AS month_volume
FROM orders
WHERE %s = @owner`

func (s *Source) Totals(ctx context.Context, scope ports.Scope, monthStart time.Time) (domain.Totals, error) {
	if err := s.ensureDB(); err != nil {
		return domain.Totals{}, err
	}
	var row totalsRow
	err := s.db.WithContext(ctx).
		Raw(fmt.Sprintf(totalsQuery, ownerColumn(scope)), map[string]any{"since": monthStart, "owner": scope.UserID}).
		Scan(&row).Error
	if err != nil {
		return domain.Totals{}, err
	}
	return domain.Totals(row), nil
}

func (s *Source) RecentOrders(ctx context.Context, scope ports.Scope, limit int) ([]*ordersports.OrderProjection, error) {
	if scope.Side == ports.SideSupplier {
		return s.orders.RecentBySupplier(ctx, scope.UserID, limit)
	}
	return s.orders.RecentByVendor(ctx, scope.UserID, limit)
}

type categoryRow struct {
	Category string
	Amount   decimal.Decimal
	Units    int
}

const categoryQuery = `
SELECT p.category AS category,
       SUM(i.line_total) AS amount,
       SUM(i.quantity) AS units
FROM orders o
JOIN order_items i ON i.order_id = o.id
JOIN products p ON p.id = i.product_id
WHERE o.%s = ? AND o.status <> 'cancelled'
GROUP BY p.category`

func (s *Source) CategoryBreakdown(ctx context.Context, scope ports.Scope) ([]domain.CategoryTotal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Raw(fmt.Sprintf(categoryQuery, ownerColumn(scope)), scope.UserID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CategoryTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CategoryTotal(r))
	}
	return out, nil
}

type salesRow struct {
	ProductID uuid.UUID
	Name      string
	UnitsSold int
	Revenue   decimal.Decimal
}

const topProductsQuery = `
SELECT p.id AS product_id,
       p.name AS name,
       SUM(i.quantity) AS units_sold,
       SUM(i.line_total) AS revenue
FROM orders o
JOIN order_items i ON i.order_id = o.id
JOIN products p ON p.id = i.product_id
WHERE o.supplier_id = ? AND o.status <> 'cancelled'
GROUP BY p.id, p.name
ORDER BY units_sold DESC, p.id ASC
LIMIT ?`

func (s *Source) TopProducts(ctx context.Context, supplierID uuid.UUID, limit int) ([]domain.ProductSales, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []salesRow
	if err := s.db.WithContext(ctx).Raw(topProductsQuery, supplierID, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ProductSales, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ProductSales(r))
	}
	return out, nil
}

func (s *Source) ProductCounts(ctx context.Context, supplierID uuid.UUID) (domain.ProductCounts, error) {
	if err := s.ensureDB(); err != nil {
		return domain.ProductCounts{}, err
	}
	var counts domain.ProductCounts
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'active') AS active FROM products WHERE supplier_id = ?`, supplierID).
		Scan(&counts).Error
	return counts, err
}

func ownerColumn(scope ports.Scope) string {
	if scope.Side == ports.SideSupplier {
		return "supplier_id"
	}
	return "vendor_id"
}

func (s *Source) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres analytics source not configured")
	}
	return nil
}
