package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/ventrest-api/internal/app/api"
	platformobservability "github.com/Apurer/ventrest-api/internal/platform/observability"
	orderactivities "github.com/Apurer/ventrest-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/ventrest-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "ventrest-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, cleanupStores, err := api.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupStores()
	if !stores.Postgres() {
		logger.Warn("worker running on in-memory stores; orders it places are invisible to the API")
	}
	events := api.NewEventPublisher(cfg, logger)
	defer func() { _ = events.Close() }()

	orderService := api.NewOrderService(stores, events, instruments)
	activities := orderactivities.NewActivities(orderService)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrders, activity.RegisterOptions{Name: orderactivities.PlaceOrdersActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
