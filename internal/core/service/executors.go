package service

import (
	"context"
	"log/slog"

	"github.com/guillermoBallester/querygate/internal/core/port"
)

// DryRunExecutor logs statements that passed validation and runs nothing.
type DryRunExecutor struct {
	logger *slog.Logger
}

func NewDryRunExecutor(logger *slog.Logger) *DryRunExecutor {
	return &DryRunExecutor{logger: logger}
}

func (e *DryRunExecutor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	e.logger.InfoContext(ctx, "dry run: query not executed", slog.String("db.statement", sql))
	return []map[string]any{}, nil
}

// ExplainOnlyExecutor runs every statement under the dialect's EXPLAIN prefix
// so callers see a plan instead of data.
type ExplainOnlyExecutor struct {
	inner  port.QueryExecutor
	prefix string
}

// NewExplainOnlyExecutor wraps inner. prefix is prepended with a separating
// space, e.g. "EXPLAIN" or "EXPLAIN QUERY PLAN".
func NewExplainOnlyExecutor(inner port.QueryExecutor, prefix string) *ExplainOnlyExecutor {
	return &ExplainOnlyExecutor{inner: inner, prefix: prefix + " "}
}

func (e *ExplainOnlyExecutor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	return e.inner.Execute(ctx, e.prefix+sql)
}
