package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsmemory "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

type fixture struct {
	clock    time.Time
	catalog  *catalogmemory.Repository
	orders   *ordersapp.Service
	svc      *Service
	vendor   auth.Identity
	supplier auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    time.Date(2026, 4, 15, 12, 0, 0, 0, time.Local),
		catalog:  catalogmemory.NewRepository(),
		vendor:   auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor},
		supplier: auth.Identity{UserID: uuid.New(), Role: auth.RoleSupplier},
	}
	now := func() time.Time { return f.clock }
	store := ordersmemory.NewStore(f.catalog)
	store.WithClock(now)
	f.orders = ordersapp.NewService(store, store, store, ordersapp.WithClock(now))
	f.svc = NewService(analyticsmemory.NewSource(store, f.catalog), WithClock(now))
	return f
}

func (f *fixture) product(t *testing.T, name string, price int64, category catalogdomain.Category) *catalogdomain.Product {
	t.Helper()
	p, err := catalogdomain.NewProduct(uuid.New(), f.supplier.UserID, name, decimal.NewFromInt(price), category, 1000, catalogdomain.UnitPiece)
	require.NoError(t, err)
	_, err = f.catalog.Save(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (f *fixture) order(t *testing.T, lines ...ordersports.CartLine) *ordersdomain.Order {
	t.Helper()
	placed, err := f.orders.PlaceOrders(context.Background(), ordersports.PlaceOrdersInput{
		Caller:     f.vendor,
		SupplierID: f.supplier.UserID,
		Items:      lines,
	})
	require.NoError(t, err)
	return placed[0].Entity
}

func (f *fixture) advance(t *testing.T, id uuid.UUID, statuses ...ordersdomain.Status) {
	t.Helper()
	for _, s := range statuses {
		_, err := f.orders.UpdateStatus(context.Background(), f.supplier, ordersports.UpdateStatusInput{OrderID: id, Status: string(s)})
		require.NoError(t, err)
	}
}

var shipped = []ordersdomain.Status{ordersdomain.StatusConfirmed, ordersdomain.StatusPreparing, ordersdomain.StatusShipped}

func TestEmptyDashboardsAreZero(t *testing.T) {
	f := newFixture(t)

	vendor, err := f.svc.VendorSummary(context.Background(), f.vendor, 0)
	require.NoError(t, err)
	assert.Zero(t, vendor.TotalOrders)
	assert.True(t, vendor.ThisMonthSpent.IsZero())
	assert.NotNil(t, vendor.RecentOrders)
	assert.Empty(t, vendor.CategoryBreakdown)

	supplier, err := f.svc.SupplierSummary(context.Background(), f.supplier, 0)
	require.NoError(t, err)
	assert.Zero(t, supplier.TotalProducts)
	assert.True(t, supplier.TotalRevenue.IsZero())
	assert.NotNil(t, supplier.TopProducts)
}

func TestVendorSummaryCountsMonthAndVolume(t *testing.T) {
	f := newFixture(t)
	chai := f.product(t, "Chai Masala", 100, catalogdomain.CategoryBeverages)
	samosa := f.product(t, "Samosa Sheets", 20, catalogdomain.CategorySnacks)

	f.clock = time.Date(2026, 3, 20, 9, 0, 0, 0, time.Local)
	march := f.order(t, ordersports.CartLine{ProductID: chai.ID, Quantity: 2})
	f.advance(t, march.ID, append(shipped, ordersdomain.StatusDelivered)...)

	f.clock = time.Date(2026, 4, 2, 9, 0, 0, 0, time.Local)
	april := f.order(t, ordersports.CartLine{ProductID: samosa.ID, Quantity: 5}, ordersports.CartLine{ProductID: chai.ID, Quantity: 1})
	f.advance(t, april.ID, shipped...)

	f.clock = time.Date(2026, 4, 10, 9, 0, 0, 0, time.Local)
	pending := f.order(t, ordersports.CartLine{ProductID: chai.ID, Quantity: 3})
	cancelled := f.order(t, ordersports.CartLine{ProductID: samosa.ID, Quantity: 50})
	f.advance(t, cancelled.ID, ordersdomain.StatusCancelled)

	f.clock = time.Date(2026, 4, 15, 12, 0, 0, 0, time.Local)
	summary, err := f.svc.VendorSummary(context.Background(), f.vendor, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalOrders)
	assert.Equal(t, 3, summary.ThisMonthOrders)
	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(400)), summary.TotalSpent.String())
	assert.True(t, summary.ThisMonthSpent.Equal(decimal.NewFromInt(200)), summary.ThisMonthSpent.String())

	require.Len(t, summary.RecentOrders, 2)
	assert.Equal(t, cancelled.ID, summary.RecentOrders[0].Entity.ID)
	assert.Equal(t, pending.ID, summary.RecentOrders[1].Entity.ID)

	require.Len(t, summary.CategoryBreakdown, 2)
	assert.Equal(t, "beverages", summary.CategoryBreakdown[0].Category)
	assert.True(t, summary.CategoryBreakdown[0].Amount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 6, summary.CategoryBreakdown[0].Units)
	assert.Equal(t, "snacks", summary.CategoryBreakdown[1].Category)
	assert.Equal(t, 5, summary.CategoryBreakdown[1].Units)
}

func TestCategoryBreakdownFollowsCurrentCategory(t *testing.T) {
	f := newFixture(t)
	syrup := f.product(t, "Rose Syrup", 50, catalogdomain.CategoryBeverages)
	f.order(t, ordersports.CartLine{ProductID: syrup.ID, Quantity: 2})

	require.NoError(t, syrup.ChangeCategory(catalogdomain.CategoryDesserts))
	_, err := f.catalog.Save(context.Background(), syrup)
	require.NoError(t, err)

	summary, err := f.svc.VendorSummary(context.Background(), f.vendor, 0)
	require.NoError(t, err)
	require.Len(t, summary.CategoryBreakdown, 1)
	assert.Equal(t, "desserts", summary.CategoryBreakdown[0].Category)
}

func TestSupplierSummaryRanksProducts(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Onion", 30, catalogdomain.CategoryIngredients)
	b := f.product(t, "Potato", 25, catalogdomain.CategoryIngredients)
	c := f.product(t, "Tomato", 40, catalogdomain.CategoryIngredients)
	retired := f.product(t, "Okra", 60, catalogdomain.CategoryIngredients)
	retired.Deactivate()
	_, err := f.catalog.Save(context.Background(), retired)
	require.NoError(t, err)

	f.order(t, ordersports.CartLine{ProductID: a.ID, Quantity: 4}, ordersports.CartLine{ProductID: b.ID, Quantity: 4})
	f.order(t, ordersports.CartLine{ProductID: c.ID, Quantity: 9})
	dropped := f.order(t, ordersports.CartLine{ProductID: a.ID, Quantity: 100})
	f.advance(t, dropped.ID, ordersdomain.StatusCancelled)

	summary, err := f.svc.SupplierSummary(context.Background(), f.supplier, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalProducts)
	assert.Equal(t, 3, summary.ActiveProducts)
	assert.Equal(t, 3, summary.TotalOrders)

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, c.ID, summary.TopProducts[0].ProductID)
	assert.Equal(t, 9, summary.TopProducts[0].UnitsSold)
	first := a.ID
	if b.ID.String() < a.ID.String() {
		first = b.ID
	}
	assert.Equal(t, first, summary.TopProducts[1].ProductID)
	assert.Equal(t, 4, summary.TopProducts[1].UnitsSold)
}

func TestRoleGatesAndLimits(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VendorSummary(context.Background(), f.supplier, 0)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.SupplierSummary(context.Background(), f.vendor, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.VendorSummary(context.Background(), f.vendor, 51)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}
