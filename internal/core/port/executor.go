package port

import "context"

// QueryExecutor runs a validated statement read-only and returns its rows.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) ([]map[string]any, error)
}
