package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/ventrest-api/internal/app/api"
	userpostgres "github.com/Apurer/ventrest-api/internal/domains/users/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/ventrest-api/internal/platform/postgres"
)

// Purges expired bearer sessions once, or every SESSION_PURGE_INTERVAL with -loop.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, cleanup := platformpostgres.ConnectOptional(connectCtx, cfg.PostgresDSN, logger)
	cancel()
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}
	store := userpostgres.NewSessionStore(db)

	purge := func() {
		purged, err := store.PurgeExpired(ctx)
		if err != nil {
			logger.Error("session purge failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("session purge completed", slog.Int64("purged", purged))
	}

	purge()
	if len(os.Args) < 2 || os.Args[1] != "-loop" {
		return
	}
	ticker := time.NewTicker(cfg.SessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
