package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	ventrestserver "github.com/Apurer/ventrest-api/go"

	ordersworkflows "github.com/Apurer/ventrest-api/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/ventrest-api/internal/platform/observability"
)

const serviceName = "ventrest-api"

// Server is the assembled HTTP API plus the resources it owns.
type Server struct {
	Router   *gin.Engine
	Services *Services
	Stores   *Stores
	closers  []func()
}

// Close releases the server's connections in reverse order of acquisition.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewServer wires stores, services, workflows and the router from cfg.
func NewServer(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Server, error) {
	logger := effectiveLogger(instruments)
	srv := &Server{}

	stores, closeStores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	srv.Stores = stores
	srv.closers = append(srv.closers, closeStores)

	events := NewEventPublisher(cfg, logger)
	srv.closers = append(srv.closers, func() {
		if err := events.Close(); err != nil {
			logger.Warn("failed to close event publisher", slog.String("error", err.Error()))
		}
	})

	services, err := NewServices(cfg, stores, events, instruments)
	if err != nil {
		srv.Close()
		return nil, err
	}
	srv.Services = services

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(services.Orders)
	switch {
	case cfg.TemporalDisabled:
		logger.Warn("Temporal disabled via TEMPORAL_DISABLED, placing orders inline")
	case !stores.Postgres():
		logger.Warn("Temporal workers cannot share in-memory stores, placing orders inline")
	default:
		temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client")
		if err != nil {
			logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
			break
		}
		srv.closers = append(srv.closers, temporalClient.Close)
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := ventrestserver.ApiHandleFunctions{
		AuthAPI:      ventrestserver.NewAuthAPI(services.Users),
		ProductAPI:   ventrestserver.NewProductAPI(services.Catalog),
		OrderAPI:     ventrestserver.NewOrderAPI(services.Orders, orderWorkflows),
		AnalyticsAPI: ventrestserver.NewAnalyticsAPI(services.Analytics),
	}
	var metrics http.Handler
	if instruments != nil {
		metrics = instruments.MetricsHandler
	}
	srv.Router = ventrestserver.NewRouter(handlers, ventrestserver.RouterOptions{
		Authenticator: services.Users,
		Middleware: []gin.HandlerFunc{
			otelgin.Middleware(serviceName),
			cors.New(corsConfig(cfg)),
			ventrestserver.RequestLogger(logger),
		},
		Metrics: metrics,
		Ready:   stores.Ping,
	})
	return srv, nil
}

func corsConfig(cfg Config) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowHeaders = append(conf.AllowHeaders, "Authorization", "Idempotency-Key")
	conf.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	conf.ExposeHeaders = []string{"Content-Disposition"}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = cfg.CORSOrigins
	}
	conf.MaxAge = 12 * time.Hour
	return conf
}

// Run boots the Ventrest HTTP API and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	srv, err := NewServer(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Ventrest API listening", slog.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ventrest API server exited", slog.String("addr", httpServer.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down Ventrest API")
	return httpServer.Shutdown(shutdownCtx)
}
