package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guillermoBallester/querygate/internal/core/domain"
)

const queryListTables = `
	SELECT name
	FROM sqlite_master
	WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
	ORDER BY name`

const queryListColumns = `
	SELECT name, type
	FROM pragma_table_info(?)
	ORDER BY cid`

type Introspector struct {
	db *sql.DB
}

func NewIntrospector(db *sql.DB) *Introspector {
	return &Introspector{db: db}
}

func (i *Introspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, queryListTables)
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

// ListColumns reports declared column types; SQLite leaves the type empty for
// untyped columns and view expressions.
func (i *Introspector) ListColumns(ctx context.Context, table string) ([]domain.Column, error) {
	rows, err := i.db.QueryContext(ctx, queryListColumns, table)
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
