package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guillermoBallester/querygate/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	ErrEmptyQuestion = errors.New("empty question")
	ErrGeneration    = errors.New("sql generation failed")
)

// AskResult is the outcome of a question. SQL is set whenever generation
// succeeded, even if the statement was then rejected or failed to run.
type AskResult struct {
	Question string           `json:"question"`
	SQL      string           `json:"sql"`
	Rows     []map[string]any `json:"rows"`
}

// AskService answers natural-language questions: describe the schema,
// generate SQL, then validate and execute it through QueryService.
type AskService struct {
	generator port.SQLGenerator
	schema    *SchemaService
	queries   *QueryService
	dialect   string
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewAskService(generator port.SQLGenerator, schema *SchemaService, queries *QueryService, dialect string, logger *slog.Logger, tracer trace.Tracer) *AskService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &AskService{
		generator: generator,
		schema:    schema,
		queries:   queries,
		dialect:   dialect,
		logger:    logger,
		tracer:    tracer,
	}
}

func (s *AskService) Ask(ctx context.Context, question string) (*AskResult, error) {
	ctx, span := s.tracer.Start(ctx, "AskService.Ask")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	description, err := s.schema.Describe(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sql, err := s.generator.Generate(ctx, port.GenerationRequest{
		Question: question,
		Schema:   description,
		Dialect:  s.dialect,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	span.SetAttributes(attribute.String("db.statement", sql))
	s.logger.InfoContext(ctx, "sql generated",
		slog.String("question", question),
		slog.String("db.statement", sql),
	)

	result := &AskResult{Question: question, SQL: sql}
	rows, err := s.queries.Execute(WithQuestion(ctx, question), sql)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	result.Rows = rows
	return result, nil
}
