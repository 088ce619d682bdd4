// Package sqldb holds the database/sql plumbing shared by the MySQL and
// SQLite adapters.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PoolOptions configures a *sql.DB pool. Zero values keep database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Configure applies opts to db and pings it. db is closed when the ping fails.
func Configure(ctx context.Context, db *sql.DB, opts PoolOptions) error {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging database (%s timeout): %w", timeout, err)
	}
	return nil
}
