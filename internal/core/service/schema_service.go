package service

import (
	"context"
	"fmt"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
	"golang.org/x/sync/errgroup"
)

// DefaultIntrospectionConcurrency bounds concurrent ListColumns calls.
const DefaultIntrospectionConcurrency = 4

// SchemaService reads the live schema on every call. Nothing is cached, so a
// table created a moment ago is visible to the next validation.
type SchemaService struct {
	introspector port.SchemaIntrospector
	concurrency  int
	notes        map[string]domain.TableNotes
}

// NewSchemaService creates a SchemaService. concurrency <= 0 selects
// DefaultIntrospectionConcurrency. notes may be nil.
func NewSchemaService(introspector port.SchemaIntrospector, concurrency int, notes map[string]domain.TableNotes) *SchemaService {
	if concurrency <= 0 {
		concurrency = DefaultIntrospectionConcurrency
	}
	return &SchemaService{
		introspector: introspector,
		concurrency:  concurrency,
		notes:        notes,
	}
}

// Snapshot lists every visible table with its columns, in the order the
// introspector reported the tables. Any failure is wrapped in
// domain.ErrSchemaIntrospection; a partial snapshot is never returned.
func (s *SchemaService) Snapshot(ctx context.Context) ([]domain.TableSchema, error) {
	names, err := s.introspector.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %w", domain.ErrSchemaIntrospection, err)
	}

	tables := make([]domain.TableSchema, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			cols, err := s.introspector.ListColumns(gctx, name)
			if err != nil {
				return fmt.Errorf("listing columns of %q: %w", name, err)
			}
			tables[i] = domain.TableSchema{Name: name, Columns: cols}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaIntrospection, err)
	}
	return tables, nil
}

// SchemaMap snapshots the schema into a normalized lookup structure.
func (s *SchemaService) SchemaMap(ctx context.Context) (domain.SchemaMap, error) {
	tables, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewSchemaMap(tables), nil
}

// Describe renders the current schema as prompt text for a SQL generator.
func (s *SchemaService) Describe(ctx context.Context) (string, error) {
	tables, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return domain.DescribeSchema(tables, s.notes), nil
}

// BuildSchemaMap snapshots the schema visible through introspector.
func BuildSchemaMap(ctx context.Context, introspector port.SchemaIntrospector) (domain.SchemaMap, error) {
	return NewSchemaService(introspector, 0, nil).SchemaMap(ctx)
}
