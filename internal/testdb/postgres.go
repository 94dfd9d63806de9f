// Package testdb starts a disposable PostgreSQL for integration tests.
package testdb

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"mess-backend/internal/database"
	"mess-backend/internal/db"
	"mess-backend/migrations"
)

var (
	sharedOnce sync.Once
	sharedDSN  string
	sharedErr  error
)

// Tables in truncation order.
var Tables = []string{
	"online_payments",
	"fee_ledger",
	"monthly_fees",
	"students",
	"admin_action_logs",
	"login_logs",
	"admins",
}

// SetupPostgres returns a pool on a migrated database shared by every test
// in the package. Tests using it cannot run in parallel. Skipped with -short.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("mess_test"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		if err != nil {
			sharedErr = err
			return
		}
		sharedDSN, sharedErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, sharedErr, "start postgres container")

	ctx := context.Background()
	pool, err := db.ConnectDSN(ctx, sharedDSN, 5)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.NewMigrator(pool, migrations.FS, ".").RunMigrations(ctx))
	Truncate(t, pool)
	return pool
}

// Truncate empties every table and resets the id sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE "+strings.Join(Tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "truncate tables")
}
