//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/ventrest-api/test/pact"

	ventrestserver "github.com/Apurer/ventrest-api/go"
	"github.com/Apurer/ventrest-api/internal/app/api"
	catalogdomain "github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/platform/messaging"
)

func TestVentrestProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	app := newContractProviderApp(t)
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedProduct(t)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := pactprovider.NewVerifier().VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	stores *api.Stores
	router *gin.Engine
	server *httptest.Server
}

// newContractProviderApp serves the real router over fresh in-memory stores.
func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	a.stores = api.MemoryStores()
	cfg := api.Config{JWTSecret: "pact-provider-secret-0123", TokenTTL: time.Hour}
	services, err := api.NewServices(cfg, a.stores, messaging.NoopPublisher{}, nil)
	require.NoError(t, err)
	handlers := ventrestserver.ApiHandleFunctions{
		AuthAPI:      ventrestserver.NewAuthAPI(services.Users),
		ProductAPI:   ventrestserver.NewProductAPI(services.Catalog),
		OrderAPI:     ventrestserver.NewOrderAPI(services.Orders, nil),
		AnalyticsAPI: ventrestserver.NewAnalyticsAPI(services.Analytics),
	}
	a.router = ventrestserver.NewRouter(handlers, ventrestserver.RouterOptions{Authenticator: services.Users})
}

func (a *contractProviderApp) seedProduct(t testing.TB) {
	t.Helper()
	example := pacttest.ExampleProduct()
	product, err := catalogdomain.NewProduct(
		uuid.MustParse(pacttest.ExistingProductID),
		uuid.MustParse(pacttest.SupplierID),
		example["name"].(string),
		decimal.RequireFromString(example["price"].(string)),
		catalogdomain.CategorySnacks,
		example["stock"].(int),
		catalogdomain.UnitKilogram,
	)
	require.NoError(t, err)
	_, err = a.stores.Products.Save(context.Background(), product)
	require.NoError(t, err)
}
