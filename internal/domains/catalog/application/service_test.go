package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func ptr[T any](v T) *T { return &v }

func supplier() auth.Identity { return auth.Identity{UserID: uuid.New(), Role: auth.RoleSupplier} }
func vendor() auth.Identity   { return auth.Identity{UserID: uuid.New(), Role: auth.RoleVendor} }

func chaiInput() ports.CreateProductInput {
	return ports.CreateProductInput{ProductMutationInput: ports.ProductMutationInput{
		Name:     ptr("Masala Chai"),
		Price:    ptr(decimal.NewFromInt(20)),
		Category: ptr("beverages"),
		Unit:     ptr("piece"),
		Stock:    ptr(50),
		Tags:     ptr([]string{"hot"}),
	}}
}

type stubPredictor struct {
	price decimal.Decimal
	err   error
	got   ports.PriceQuery
}

func (s *stubPredictor) Predict(_ context.Context, q ports.PriceQuery) (decimal.Decimal, error) {
	s.got = q
	return s.price, s.err
}

type stubExporter struct{ count int }

func (s *stubExporter) Export(w io.Writer, products []*domain.Product) error {
	s.count = len(products)
	_, err := w.Write([]byte("ok"))
	return err
}

func TestCreateRequiresSupplierAndValidFields(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, vendor(), chaiInput())
	require.ErrorIs(t, err, ErrForbidden)

	bad := chaiInput()
	bad.Category = ptr("tea")
	_, err = svc.Create(ctx, supplier(), bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	noPrice := chaiInput()
	noPrice.Price = nil
	_, err = svc.Create(ctx, supplier(), noPrice)
	require.ErrorIs(t, err, ErrInvalidInput)

	owner := supplier()
	created, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, created.Entity.SupplierID)
	assert.Equal(t, domain.StatusActive, created.Entity.Status)
	assert.Equal(t, []string{"hot"}, created.Entity.Tags)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	ctx := context.Background()
	owner := supplier()
	created, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)
	id := created.Entity.ID

	_, err = svc.Update(ctx, supplier(), ports.UpdateProductInput{ID: id})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, owner, ports.UpdateProductInput{ID: id, ProductMutationInput: ports.ProductMutationInput{
		Price: ptr(decimal.NewFromInt(22)),
		Stock: ptr(0),
	}})
	require.NoError(t, err)
	assert.True(t, updated.Entity.Price.Equal(decimal.NewFromInt(22)))
	assert.Equal(t, domain.StatusOutOfStock, updated.Entity.Status)

	_, err = svc.Update(ctx, owner, ports.UpdateProductInput{ID: id, ProductMutationInput: ports.ProductMutationInput{Price: ptr(decimal.NewFromInt(-1))}})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.ErrorIs(t, svc.Delete(ctx, vendor(), id), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, id))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Entity.Status)

	_, err = svc.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

// sellingRepository sells units through the order writer's path right before
// the first read or update an edit issues.
type sellingRepository struct {
	*catalogmemory.Repository
	once sync.Once
	sell func()
}

func (r *sellingRepository) GetByID(ctx context.Context, id uuid.UUID) (*ports.ProductProjection, error) {
	r.once.Do(r.sell)
	return r.Repository.GetByID(ctx, id)
}

func (r *sellingRepository) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Product) error) (*ports.ProductProjection, error) {
	r.once.Do(r.sell)
	return r.Repository.Update(ctx, id, fn)
}

func TestEditKeepsUnitsSoldDuringTheEdit(t *testing.T) {
	base := catalogmemory.NewRepository()
	ctx := context.Background()
	owner := supplier()
	input := chaiInput()
	input.Stock = ptr(5)
	created, err := NewService(base).Create(ctx, owner, input)
	require.NoError(t, err)
	id := created.Entity.ID

	repo := &sellingRepository{Repository: base, sell: func() {
		_, err := base.Adjust(id, func(p *domain.Product) error { return p.Take(3) })
		require.NoError(t, err)
	}}
	svc := NewService(repo)

	updated, err := svc.Update(ctx, owner, ports.UpdateProductInput{ID: id, ProductMutationInput: ports.ProductMutationInput{
		Name: ptr("Kadak Chai"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "Kadak Chai", updated.Entity.Name)
	assert.Equal(t, 2, updated.Entity.Stock)

	stored, err := base.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Entity.Stock)
}

func TestConcurrentEditsNeverRestoreSoldStock(t *testing.T) {
	repo := catalogmemory.NewRepository()
	svc := NewService(repo)
	ctx := context.Background()
	owner := supplier()
	input := chaiInput()
	input.Stock = ptr(40)
	created, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)
	id := created.Entity.ID

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.Adjust(id, func(p *domain.Product) error { return p.Take(1) })
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Update(ctx, owner, ports.UpdateProductInput{ID: id, ProductMutationInput: ports.ProductMutationInput{
				Description: ptr("fresh batch"),
			}})
		}()
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Entity.Stock)
	assert.Equal(t, domain.StatusOutOfStock, stored.Entity.Status)
}

func TestListShowsOnlyActiveProducts(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	ctx := context.Background()
	owner := supplier()

	kept, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, owner, hidden.Entity.ID))

	list, err := svc.List(ctx, ports.ListProductsInput{Category: "all", Search: "chai"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.Entity.ID, list[0].Entity.ID)

	mine, err := svc.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.List(ctx, ports.ListProductsInput{Category: "tea"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(ctx, ports.ListProductsInput{MinPrice: ptr(decimal.NewFromInt(10)), MaxPrice: ptr(decimal.NewFromInt(5))})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListMine(ctx, vendor())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestExportMineUsesExporter(t *testing.T) {
	exporter := &stubExporter{}
	svc := NewService(catalogmemory.NewRepository(), WithExporter(exporter))
	ctx := context.Background()
	owner := supplier()
	_, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportMine(ctx, owner, &buf))
	assert.Equal(t, 1, exporter.count)
	assert.Equal(t, "ok", buf.String())
}

func TestSuggestPrice(t *testing.T) {
	predictor := &stubPredictor{price: decimal.RequireFromString("24.50")}
	repo := catalogmemory.NewRepository()
	svc := NewService(repo, WithPricePredictor(predictor))
	ctx := context.Background()
	owner := supplier()
	created, err := svc.Create(ctx, owner, chaiInput())
	require.NoError(t, err)

	query := ports.PriceQuery{Day: 5, Weather: "rainy", Demand: "high"}
	suggestion, err := svc.SuggestPrice(ctx, owner, ports.PriceSuggestionInput{ProductID: created.Entity.ID, PriceQuery: query})
	require.NoError(t, err)
	assert.Equal(t, query, predictor.got)
	assert.True(t, suggestion.CurrentPrice.Equal(decimal.NewFromInt(20)))
	assert.True(t, suggestion.SuggestedPrice.Equal(decimal.RequireFromString("24.50")))

	_, err = svc.SuggestPrice(ctx, owner, ports.PriceSuggestionInput{ProductID: created.Entity.ID, PriceQuery: ports.PriceQuery{Day: 5}})
	require.ErrorIs(t, err, ErrInvalidInput)

	predictor.err = errors.New("connection refused")
	_, err = svc.SuggestPrice(ctx, owner, ports.PriceSuggestionInput{ProductID: created.Entity.ID, PriceQuery: query})
	require.ErrorIs(t, err, ports.ErrPricingUnavailable)

	unconfigured := NewService(repo)
	_, err = unconfigured.SuggestPrice(ctx, owner, ports.PriceSuggestionInput{ProductID: created.Entity.ID, PriceQuery: query})
	require.ErrorIs(t, err, ports.ErrPricingUnavailable)
}
