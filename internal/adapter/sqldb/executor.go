package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor runs validated statements through database/sql inside a
// transaction that is read-only when configured so.
type Executor struct {
	db           *sql.DB
	readOnly     bool
	maxRows      int
	queryTimeout time.Duration
}

func NewExecutor(db *sql.DB, readOnly bool, maxRows int, queryTimeout time.Duration) *Executor {
	return &Executor{
		db:           db,
		readOnly:     readOnly,
		maxRows:      maxRows,
		queryTimeout: queryTimeout,
	}
}

func (e *Executor) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: e.readOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	results, err := ScanRows(rows, e.maxRows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return results, nil
}

// ScanRows converts rows into maps keyed by column name, stopping after limit
// rows when limit > 0. Byte slices become strings so results serialize as
// text. The result is never nil.
func ScanRows(rows *sql.Rows, limit int) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := []map[string]any{}
	for rows.Next() {
		if limit > 0 && len(result) >= limit {
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("reading row values: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}
