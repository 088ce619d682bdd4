package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// rowsToMaps converts pgx.Rows into a slice of maps keyed by column name,
// stopping after limit rows when limit > 0. The result is never nil.
func rowsToMaps(rows pgx.Rows, limit int) ([]map[string]any, error) {
	fields := rows.FieldDescriptions()
	result := []map[string]any{}
	for rows.Next() {
		if limit > 0 && len(result) >= limit {
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row values: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = jsonValue(vals[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}

// jsonValue rewrites driver values that would serialize badly. pgx decodes
// uuid columns to [16]byte, which encoding/json renders as a number array.
func jsonValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return string(x)
	default:
		return v
	}
}
