package mcp

import (
	"log/slog"

	"github.com/guillermoBallester/querygate/internal/core/port"
	"github.com/guillermoBallester/querygate/internal/core/service"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer with tools and logging hooks. ask may be nil
// when no SQL generator is configured.
func NewServer(version string, schema *service.SchemaService, query *service.QueryService, ask *service.AskService, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, schema, query, ask, logger)

	return s
}
