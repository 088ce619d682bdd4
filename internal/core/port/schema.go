package port

import (
	"context"

	"github.com/guillermoBallester/querygate/internal/core/domain"
)

// SchemaIntrospector reads catalog metadata from a live database.
type SchemaIntrospector interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]domain.Column, error)
}
