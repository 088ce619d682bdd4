package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryCanceled is the SQLSTATE raised when statement_timeout fires.
const queryCanceled = "57014"

// Executor runs validated statements inside a transaction whose access mode
// follows readOnly. Statements are never rewritten; the row cap is applied
// while scanning.
type Executor struct {
	pool         *pgxpool.Pool
	readOnly     bool
	maxRows      int
	queryTimeout time.Duration
}

func NewExecutor(pool *pgxpool.Pool, readOnly bool, maxRows int, queryTimeout time.Duration) *Executor {
	return &Executor{
		pool:         pool,
		readOnly:     readOnly,
		maxRows:      maxRows,
		queryTimeout: queryTimeout,
	}
}

// Execute runs sql exactly as validated and returns at most maxRows rows.
// A server-side statement timeout is reported as context.DeadlineExceeded.
func (e *Executor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: e.accessMode()})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL scopes the timeout to this transaction, so PostgreSQL cancels
	// the statement itself even if the client never notices the deadline.
	if e.queryTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", e.queryTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("setting statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, classify("executing query", err)
	}

	results, err := rowsToMaps(rows, e.maxRows)
	rows.Close()
	if err != nil {
		return nil, classify("reading results", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return results, nil
}

func (e *Executor) accessMode() pgx.TxAccessMode {
	if e.readOnly {
		return pgx.ReadOnly
	}
	return pgx.ReadWrite
}

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == queryCanceled {
		return fmt.Errorf("%s: %w: %w", op, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
