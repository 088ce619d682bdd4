package postgres

import (
	"context"
	"fmt"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Introspector reads table and column names from information_schema.
type Introspector struct {
	pool    *pgxpool.Pool
	schemas []string
}

// NewIntrospector creates an Introspector limited to schemas, searched in the
// given order. An empty list means the connection's search_path.
func NewIntrospector(pool *pgxpool.Pool, schemas []string) *Introspector {
	return &Introspector{pool: pool, schemas: schemas}
}

func (i *Introspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.pool.Query(ctx, queryListTables, schemaScope(i.schemas))
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}
	return tables, nil
}

// ListColumns returns the columns of table as found in the first schema in
// scope that defines it. Same-named tables further down the scope are ignored.
func (i *Introspector) ListColumns(ctx context.Context, table string) ([]domain.Column, error) {
	rows, err := i.pool.Query(ctx, queryListColumns, schemaScope(i.schemas), table)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	var cols []domain.Column
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	return cols, nil
}
