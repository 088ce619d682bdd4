package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/service"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server metadata
const serverName = "querygate"

// pgQueryCanceled is the SQLSTATE Postgres reports when statement_timeout fires.
const pgQueryCanceled = "57014"

// Tool descriptions
const (
	descDescribeSchema = "Describe every table visible to the server: table names, column names and types, " +
		"plus any operator-provided descriptions. Call this first so your queries only reference " +
		"tables and columns that exist."

	descValidateSQL = "Check a SQL statement without running it. " +
		"The statement must be a single read-only SELECT and every table and column it names must exist. " +
		"Returns the statement unchanged when it is valid, or a rejection with a reason code."

	descValidateSQLParam = "SQL statement to validate"

	descQuery = "Validate and execute a read-only SQL query against the database and return results as a JSON array of objects. " +
		"A server-side row limit and query timeout are enforced. " +
		"Statements that modify data or reference unknown tables or columns are rejected before they reach the database. " +
		"Always use specific column names instead of SELECT *."

	descQueryParam = "SQL query to execute (SELECT statements only)"

	descAsk = "Answer a natural-language question about the data. " +
		"The server generates SQL from the live schema, validates it and runs it. " +
		"Returns the question, the generated SQL and the result rows."

	descAskParam = "Question to answer, in plain language"
)

// RegisterTools adds the querygate tools to s. The ask tool is only
// registered when ask is non-nil.
func RegisterTools(s *server.MCPServer, schema *service.SchemaService, query *service.QueryService, ask *service.AskService, logger *slog.Logger) {
	s.AddTool(
		mcp.NewTool("describe_schema",
			mcp.WithDescription(descDescribeSchema),
		),
		describeSchemaHandler(schema, logger),
	)

	s.AddTool(
		mcp.NewTool("validate_sql",
			mcp.WithDescription(descValidateSQL),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descValidateSQLParam),
			),
		),
		validateHandler(query, logger),
	)

	s.AddTool(
		mcp.NewTool("query",
			mcp.WithDescription(descQuery),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descQueryParam),
			),
		),
		queryHandler(query, logger),
	)

	if ask != nil {
		s.AddTool(
			mcp.NewTool("ask",
				mcp.WithDescription(descAsk),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description(descAskParam),
				),
			),
			askHandler(ask, logger),
		)
	}
}

func describeSchemaHandler(schema *service.SchemaService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := schema.Describe(ctx)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "describe schema")), nil
		}
		if text == "" {
			text = "No tables are visible."
		}
		return mcp.NewToolResultText(text), nil
	}
}

func validateHandler(query *service.QueryService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "validate_sql")
		validated, err := query.Validate(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "validate")), nil
		}

		data, err := json.Marshal(map[string]any{"valid": true, "sql": validated})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func queryHandler(query *service.QueryService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "query")
		results, err := query.Execute(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "query")), nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func askHandler(ask *service.AskService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, ok := request.GetArguments()["question"].(string)
		if !ok || question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		ctx = service.WithToolName(ctx, "ask")
		result, err := ask.Ask(ctx, question)
		if err != nil {
			msg := sanitizeError(logger, err, "ask")
			if result != nil && result.SQL != "" {
				msg += "\ngenerated sql: " + result.SQL
			}
			return mcp.NewToolResultError(msg), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// sanitizeError turns err into a message safe to hand back to the client.
// Validation failures keep their reason code and detail; driver errors are
// logged and replaced with a generic message.
func sanitizeError(logger *slog.Logger, err error, op string) string {
	if reason := domain.Reason(err); reason != "" {
		if reason == domain.ReasonSchemaIntrospection {
			logger.Error(op+" failed", slog.String("error", err.Error()))
			return fmt.Sprintf("%s failed [%s]: could not read the database schema", op, reason)
		}
		return fmt.Sprintf("%s rejected [%s]: %v", op, reason, err)
	}

	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		return "question is required"
	case errors.Is(err, service.ErrGeneration):
		logger.Error(op+" failed", slog.String("error", err.Error()))
		return fmt.Sprintf("%s failed: could not generate SQL for this question", op)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s timed out", op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgQueryCanceled {
		return fmt.Sprintf("%s timed out", op)
	}

	logger.Error(op+" failed", slog.String("error", err.Error()))
	return fmt.Sprintf("%s failed: internal error, check server logs", op)
}
