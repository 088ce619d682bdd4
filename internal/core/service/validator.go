package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Validator decides whether candidate SQL may run against the live database.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	schema  *SchemaService
	checker port.ReferenceChecker
	logger  *slog.Logger
	tracer  trace.Tracer
	inst    port.Instrumentation
}

func NewValidator(schema *SchemaService, checker port.ReferenceChecker, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *Validator {
	if checker == nil {
		checker = domain.NewHeuristicChecker()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &Validator{
		schema:  schema,
		checker: checker,
		logger:  logger,
		tracer:  tracer,
		inst:    inst,
	}
}

// Validate returns sql unchanged when it is a single safe SELECT whose table
// and column references exist in the live schema. Otherwise the error wraps
// one of the domain validation sentinels.
func (v *Validator) Validate(ctx context.Context, sql string) (string, error) {
	ctx, span := v.tracer.Start(ctx, "Validator.Validate",
		trace.WithAttributes(attribute.String("db.statement", sql)),
	)
	defer span.End()

	if err := v.validate(ctx, sql); err != nil {
		reason := domain.Reason(err)
		v.logger.WarnContext(ctx, "query validation rejected",
			slog.String("db.statement", sql),
			slog.String("error.type", reason),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		v.inst.IncrementRejections(ctx, reason)
		return "", err
	}
	return sql, nil
}

func (v *Validator) validate(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return domain.ErrEmptyInput
	}

	normalized := domain.Normalize(sql)
	if err := domain.CheckSafety(normalized); err != nil {
		return err
	}

	schema, err := v.schema.SchemaMap(ctx)
	if err != nil {
		return err
	}

	if err := v.checker.CheckReferences(normalized, schema); err != nil {
		return fmt.Errorf("checking references: %w", err)
	}
	return nil
}
