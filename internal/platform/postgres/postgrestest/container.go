//go:build integration

// Package postgrestest starts a disposable PostgreSQL with the migrated schema.
package postgrestest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/ventrest-api/internal/platform/migrations"
	"github.com/Apurer/ventrest-api/internal/platform/postgres"
)

// Start runs postgres:15-alpine, applies migrations and returns a connected DB.
// The container is terminated through t.Cleanup.
func Start(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("ventrest_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(dsn))

	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a minimal user row so foreign keys on products and orders hold.
func SeedUser(t *testing.T, db *gorm.DB, id, role string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO users (id, email, password_hash, role, name) VALUES (?, ?, 'x', ?, ?)`,
		id, id+"@ventrest.test", role, role+" "+id[:8],
	).Error
	require.NoError(t, err)
}
