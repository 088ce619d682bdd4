package port

import (
	"context"

	"github.com/guillermoBallester/querygate/internal/core/domain"
)

// QueryValidator decides whether untrusted SQL may run. It returns the input
// unchanged on success.
type QueryValidator interface {
	Validate(ctx context.Context, sql string) (string, error)
}

// ReferenceChecker verifies that a normalized, already safety-checked
// statement only touches tables and columns present in schema.
type ReferenceChecker interface {
	CheckReferences(normalized string, schema domain.SchemaMap) error
}
