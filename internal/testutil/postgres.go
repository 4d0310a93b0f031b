// Package testutil starts the external services repository tests run against.
package testutil

import (
	"context"
	"testing"

	"github.com/fadedpez/tucoleague/pkg/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

const postgresImage = "postgres:16-alpine"

// PostgresDSN starts a throwaway Postgres container for t and returns its
// connection string. The container is removed when t finishes. t is skipped
// in -short mode or when no container runtime is reachable.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("league"),
		postgres.WithUsername("league"),
		postgres.WithPassword("league"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// OpenPostgres connects to the database at dsn.
func OpenPostgres(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenPostgres(dsn)
	require.NoError(t, err)
	return gdb
}

// Truncate empties tables so each test starts from a clean database.
func Truncate(t *testing.T, gdb *gorm.DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		require.NoError(t, gdb.Exec("TRUNCATE TABLE "+table+" CASCADE").Error)
	}
}
