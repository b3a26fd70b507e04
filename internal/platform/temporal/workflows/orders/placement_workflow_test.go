package orders

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/ventrest-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func newEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *catalogmemory.Repository) {
	t.Helper()
	env, catalog, _ := newEnvWithReads(t, nil)
	return env, catalog
}

// newEnvWithReads lets a test wrap the order reads the writer performs after commit.
func newEnvWithReads(t *testing.T, wrap func(ordersports.Repository) ordersports.Repository) (*testsuite.TestWorkflowEnvironment, *catalogmemory.Repository, *ordersmemory.Store) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	catalog := catalogmemory.NewRepository()
	store := ordersmemory.NewStore(catalog)
	var reads ordersports.Repository = store
	if wrap != nil {
		reads = wrap(store)
	}
	acts := orderactivities.NewActivities(application.NewService(store, reads, store))
	env.RegisterWorkflowWithOptions(PlacementWorkflow, workflow.RegisterOptions{Name: PlacementWorkflowName})
	env.RegisterActivityWithOptions(acts.PlaceOrders, activity.RegisterOptions{Name: orderactivities.PlaceOrdersActivityName})
	return env, catalog, store
}

// flakyReads fails the first n order reads.
type flakyReads struct {
	ordersports.Repository
	remaining atomic.Int32
}

func (r *flakyReads) GetByID(ctx context.Context, id uuid.UUID) (*ordersports.OrderProjection, error) {
	if r.remaining.Add(-1) >= 0 {
		return nil, errors.New("connection reset by peer")
	}
	return r.Repository.GetByID(ctx, id)
}

func seedProduct(t *testing.T, catalog *catalogmemory.Repository, supplier uuid.UUID, stock int) *catalogdomain.Product {
	t.Helper()
	product, err := catalogdomain.NewProduct(uuid.New(), supplier, "Tamarind", decimal.NewFromInt(70), catalogdomain.CategoryIngredients, stock, catalogdomain.UnitKilogram)
	require.NoError(t, err)
	_, err = catalog.Save(context.Background(), product)
	require.NoError(t, err)
	return product
}

func TestPlacementWorkflowPlacesOrders(t *testing.T) {
	env, catalog := newEnv(t)
	supplier := uuid.New()
	product := seedProduct(t, catalog, supplier, 10)

	env.ExecuteWorkflow(PlacementWorkflowName, PlacementWorkflowInput{
		Command: ordersports.PlaceOrdersInput{
			Caller:     auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor},
			SupplierID: supplier,
			Items:      []ordersports.CartLine{{ProductID: product.ID, Quantity: 4}},
		},
		TraceID: "trace-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var orders []*ordersports.OrderProjection
	require.NoError(t, env.GetWorkflowResult(&orders))
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Entity.TotalAmount.Equal(decimal.NewFromInt(280)))

	stored, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Entity.Stock)
}

func TestPlacementWorkflowRejectsShortageWithoutRetry(t *testing.T) {
	env, catalog := newEnv(t)
	supplier := uuid.New()
	product := seedProduct(t, catalog, supplier, 1)

	env.ExecuteWorkflow(PlacementWorkflowName, PlacementWorkflowInput{
		Command: ordersports.PlaceOrdersInput{
			Caller:     auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor},
			SupplierID: supplier,
			Items:      []ordersports.CartLine{{ProductID: product.ID, Quantity: 5}},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := orderactivities.DecodeError(env.GetWorkflowError())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalogdomain.ErrInsufficientStock))
	assert.True(t, errors.Is(err, application.ErrInvalidInput))
}

func TestPlacementWorkflowRetryAfterCommitReplaysOrders(t *testing.T) {
	env, catalog, store := newEnvWithReads(t, func(repo ordersports.Repository) ordersports.Repository {
		flaky := &flakyReads{Repository: repo}
		flaky.remaining.Store(1)
		return flaky
	})
	supplier := uuid.New()
	vendor := auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor}
	product := seedProduct(t, catalog, supplier, 10)

	env.ExecuteWorkflow(PlacementWorkflowName, PlacementWorkflowInput{
		Command: ordersports.PlaceOrdersInput{
			Caller:     vendor,
			SupplierID: supplier,
			Items:      []ordersports.CartLine{{ProductID: product.ID, Quantity: 3}},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var orders []*ordersports.OrderProjection
	require.NoError(t, env.GetWorkflowResult(&orders))
	require.Len(t, orders, 1)

	persisted, err := store.ListByVendor(context.Background(), vendor.UserID)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, orders[0].Entity.ID, persisted[0].Entity.ID)

	stored, err := catalog.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Entity.Stock)
}
