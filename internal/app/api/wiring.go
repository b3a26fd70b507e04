package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	pricingclient "github.com/Apurer/ventrest-api/internal/clients/http/pricing"
	analyticsmemory "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/memory"
	analyticsobs "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/observability"
	analyticspostgres "github.com/Apurer/ventrest-api/internal/domains/analytics/adapters/persistence/postgres"
	analyticsapp "github.com/Apurer/ventrest-api/internal/domains/analytics/application"
	analyticsports "github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
	catalogxlsx "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/export/xlsx"
	catalogpricing "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/external/pricing"
	catalogmemory "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/ventrest-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/ventrest-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
	ordersevents "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/events"
	ordersmemory "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/ventrest-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	userjwt "github.com/Apurer/ventrest-api/internal/domains/users/adapters/tokens/jwt"
	usermemory "github.com/Apurer/ventrest-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/ventrest-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/ventrest-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/ventrest-api/internal/domains/users/application"
	userports "github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/platform/messaging"
	"github.com/Apurer/ventrest-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/ventrest-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/ventrest-api/internal/platform/postgres"
)

// Stores holds one storage backend per bounded context, all Postgres or all in memory.
type Stores struct {
	DB *gorm.DB

	Users     userports.Repository
	Sessions  userports.SessionStore
	Products  catalogports.Repository
	OrderUnit ordersports.UnitOfWork
	Orders    ordersports.Repository
	OrderKeys ordersports.IdempotencyStore
	Analytics analyticsports.Source
}

// Postgres reports whether the stores are backed by the database.
func (s *Stores) Postgres() bool {
	return s.DB != nil
}

// Ping checks the database when there is one.
func (s *Stores) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// OpenStores connects to Postgres when configured and falls back to memory otherwise.
func OpenStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, func(), error) {
	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return MemoryStores(), cleanup, nil
	}
	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.PostgresDSN); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		logger.Info("schema migrations applied")
	}
	orders := orderspostgres.NewRepository(db)
	return &Stores{
		DB:        db,
		Users:     userpostgres.NewRepository(db),
		Sessions:  userpostgres.NewSessionStore(db),
		Products:  catalogpostgres.NewRepository(db),
		OrderUnit: orders,
		Orders:    orders,
		OrderKeys: orders,
		Analytics: analyticspostgres.NewSource(db),
	}, cleanup, nil
}

// MemoryStores builds process-local stores that share one product catalog.
func MemoryStores() *Stores {
	products := catalogmemory.NewRepository()
	orders := ordersmemory.NewStore(products)
	return &Stores{
		Users:     usermemory.NewRepository(),
		Sessions:  usermemory.NewSessionStore(),
		Products:  products,
		OrderUnit: orders,
		Orders:    orders,
		OrderKeys: orders,
		Analytics: analyticsmemory.NewSource(orders, products),
	}
}

// Services are the decorated application services of every bounded context.
type Services struct {
	Users     userports.Service
	Catalog   catalogports.Service
	Orders    ordersports.Service
	Analytics analyticsports.Service
}

// NewServices builds and decorates every service over the given stores.
func NewServices(cfg Config, stores *Stores, events messaging.Publisher, instruments *platformobservability.Instruments) (*Services, error) {
	logger := effectiveLogger(instruments)

	tokens, err := userjwt.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("configure token issuer: %w", err)
	}
	users := userobs.New(
		userapp.NewService(stores.Users, stores.Sessions, tokens),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	catalogOpts := []catalogapp.Option{catalogapp.WithExporter(catalogxlsx.NewExporter())}
	if cfg.PricingURL != "" {
		pricing, err := pricingclient.NewClient(cfg.PricingURL, &http.Client{
			Timeout:   cfg.PricingTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
		if err != nil {
			return nil, fmt.Errorf("configure pricing client: %w", err)
		}
		catalogOpts = append(catalogOpts, catalogapp.WithPricePredictor(catalogpricing.NewPredictor(pricing)))
	} else {
		logger.Warn("PRICING_API_URL not set, price suggestions disabled")
	}
	catalog := catalogobs.New(
		catalogapp.NewService(stores.Products, catalogOpts...),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)

	orders := NewOrderService(stores, events, instruments)

	analytics := analyticsobs.New(
		analyticsapp.NewService(stores.Analytics),
		analyticsobs.WithLogger(logger),
		analyticsobs.WithTracer(instruments.Tracer("internal.analytics.application")),
		analyticsobs.WithMeter(instruments.Meter("internal.analytics.application")),
	)
	return &Services{Users: users, Catalog: catalog, Orders: orders, Analytics: analytics}, nil
}

// NewOrderService builds the decorated order service; the worker runs the same one.
func NewOrderService(stores *Stores, events messaging.Publisher, instruments *platformobservability.Instruments) ordersports.Service {
	logger := effectiveLogger(instruments)
	core := ordersapp.NewService(
		stores.OrderUnit,
		stores.Orders,
		stores.OrderKeys,
		ordersapp.WithPublisher(ordersevents.NewPublisher(events)),
		ordersapp.WithLogger(logger),
	)
	return ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}

// NewEventPublisher returns a Kafka producer when brokers are configured and a no-op otherwise.
func NewEventPublisher(cfg Config, logger *slog.Logger) messaging.Publisher {
	if !cfg.KafkaEnabled() {
		logger.Warn("KAFKA_BROKERS not set, order events are dropped")
		return messaging.NoopPublisher{}
	}
	logger.Info("order events enabled", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	return messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
}

// ConnectTemporal dials Temporal with tracing and structured logging.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
