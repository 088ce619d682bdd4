package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}

type questionKey struct{}

// WithToolName returns a context carrying the calling tool or route for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

// WithQuestion returns a context carrying the natural-language question a
// statement was generated from.
func WithQuestion(ctx context.Context, question string) context.Context {
	return context.WithValue(ctx, questionKey{}, question)
}

func questionFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(questionKey{}).(string); ok {
		return v
	}
	return ""
}

// QueryService orchestrates SQL validation and execution.
type QueryService struct {
	validator port.QueryValidator
	executor  port.QueryExecutor
	auditor   port.QueryAuditor
	logger    *slog.Logger
	masks     domain.ColumnMasks
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewQueryService(validator port.QueryValidator, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, masks domain.ColumnMasks, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		validator: validator,
		executor:  executor,
		auditor:   auditor,
		logger:    logger,
		masks:     masks,
		tracer:    tracer,
		inst:      inst,
	}
}

// Validate runs the validator only. Nothing is executed or audited.
func (s *QueryService) Validate(ctx context.Context, sql string) (string, error) {
	return s.validator.Validate(ctx, sql)
}

// Execute validates the SQL statement and, if allowed, delegates to the
// executor. Rejections are audited with their reason code; validation errors
// keep their domain sentinel so callers can classify them.
func (s *QueryService) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Execute",
		trace.WithAttributes(
			attribute.String("db.operation.name", "query"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	entry := port.AuditEntry{
		ID:       uuid.NewString(),
		Tool:     toolNameFromCtx(ctx),
		Question: questionFromCtx(ctx),
		SQL:      sql,
	}

	reject := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.Reason = domain.Reason(err)
		entry.Err = err
		s.auditor.Record(ctx, entry)
		return fmt.Errorf("validation: %w", err)
	}

	if _, err := s.validator.Validate(ctx, sql); err != nil {
		return nil, reject(err)
	}
	masks, err := s.masks.ForQuery(sql)
	if err != nil {
		return nil, reject(err)
	}

	start := time.Now()
	results, err := s.executor.Execute(ctx, sql)
	entry.DurationMS = time.Since(start).Milliseconds()
	entry.RowsReturned = len(results)
	entry.Err = err

	s.inst.RecordQueryDuration(ctx, float64(entry.DurationMS))
	s.auditor.Record(ctx, entry)

	if err != nil {
		s.logger.ErrorContext(ctx, "query execution failed",
			slog.String("db.operation.name", "query"),
			slog.String("db.statement", sql),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return nil, err
	}

	s.inst.IncrementQueryCount(ctx)
	span.SetAttributes(attribute.Int("db.response.rows", len(results)))
	masks.Apply(results)

	return results, nil
}
