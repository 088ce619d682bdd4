package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSchema = `
	CREATE TABLE customers (
		id    SERIAL PRIMARY KEY,
		name  TEXT NOT NULL,
		email TEXT
	);

	CREATE TABLE orders (
		id          SERIAL PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		total       NUMERIC(10,2) NOT NULL DEFAULT 0
	);

	CREATE VIEW big_orders AS SELECT id, total FROM orders WHERE total > 100;

	CREATE SCHEMA archive;
	CREATE TABLE archive.customers (
		id         INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		deleted_at TIMESTAMPTZ
	);

	INSERT INTO customers (name, email) VALUES
		('Alice', 'alice@example.com'),
		('Bob', NULL);
`

// setupTestDB starts a disposable PostgreSQL container seeded with testSchema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	return pool, connStr
}
