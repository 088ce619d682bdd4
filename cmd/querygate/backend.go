package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guillermoBallester/querygate/internal/adapter/mysql"
	"github.com/guillermoBallester/querygate/internal/adapter/postgres"
	"github.com/guillermoBallester/querygate/internal/adapter/sqldb"
	"github.com/guillermoBallester/querygate/internal/adapter/sqlite"
	"github.com/guillermoBallester/querygate/internal/config"
	"github.com/guillermoBallester/querygate/internal/core/port"
)

// backend is one connected database: how to read its schema, how to run
// statements on it, and the EXPLAIN syntax it understands.
type backend struct {
	introspector  port.SchemaIntrospector
	executor      port.QueryExecutor
	explainPrefix string
	close         func()
}

// openBackend connects to the database selected by cfg.Driver.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("database pool connected", slog.String("db.system", dbSystem(cfg.Driver)))
		return &backend{
			introspector:  postgres.NewIntrospector(pool, cfg.Schemas),
			executor:      postgres.NewExecutor(pool, cfg.ReadOnly, cfg.MaxRows, cfg.QueryTimeout),
			explainPrefix: "EXPLAIN",
			close:         pool.Close,
		}, nil

	case config.DriverMySQL:
		db, err := mysql.Open(ctx, cfg.DatabaseURL, sqlPoolOptions(cfg))
		if err != nil {
			return nil, err
		}
		logger.Info("database pool connected", slog.String("db.system", "mysql"))
		return &backend{
			introspector:  mysql.NewIntrospector(db),
			executor:      sqldb.NewExecutor(db, cfg.ReadOnly, cfg.MaxRows, cfg.QueryTimeout),
			explainPrefix: "EXPLAIN",
			close:         func() { _ = db.Close() },
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DatabaseURL, cfg.ReadOnly, sqlPoolOptions(cfg))
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", slog.String("db.system", "sqlite"), slog.Bool("read_only", cfg.ReadOnly))
		return &backend{
			introspector: sqlite.NewIntrospector(db),
			// SQLite has no read-only transactions; the handle itself is
			// opened read-only instead.
			executor:      sqldb.NewExecutor(db, false, cfg.MaxRows, cfg.QueryTimeout),
			explainPrefix: "EXPLAIN QUERY PLAN",
			close:         func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// dbSystem maps a driver name to the OTel db.system value.
func dbSystem(driver string) string {
	if driver == config.DriverPostgres {
		return "postgresql"
	}
	return driver
}

func sqlPoolOptions(cfg *config.Config) sqldb.PoolOptions {
	return sqldb.PoolOptions{
		MaxOpenConns:    int(cfg.PoolMaxConns),
		MaxIdleConns:    int(cfg.PoolMinConns),
		ConnMaxLifetime: cfg.PoolMaxConnLifetime,
	}
}
