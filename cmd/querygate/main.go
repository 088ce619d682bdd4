package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guillermoBallester/querygate/internal/adapter/llm"
	"github.com/guillermoBallester/querygate/internal/adapter/mcp"
	"github.com/guillermoBallester/querygate/internal/adapter/policy"
	"github.com/guillermoBallester/querygate/internal/adapter/rest"
	"github.com/guillermoBallester/querygate/internal/audit"
	"github.com/guillermoBallester/querygate/internal/config"
	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
	"github.com/guillermoBallester/querygate/internal/core/service"
	"github.com/guillermoBallester/querygate/internal/telemetry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	gin.SetMode(gin.ReleaseMode)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	overrides, err := parseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr: stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting querygate",
		slog.String("version", version),
		slog.String("db.system", dbSystem(cfg.Driver)),
		slog.String("database_url", redactDSN(cfg.Driver, cfg.DatabaseURL)),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("reference_check", cfg.ReferenceCheck),
		slog.String("transport", cfg.Transport),
		slog.Bool("read_only", cfg.ReadOnly),
		slog.Bool("dry_run", cfg.DryRun),
		slog.Bool("explain_only", cfg.ExplainOnly),
		slog.Int("max_rows", cfg.MaxRows),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Telemetry
	tracer, inst, prom, shutdownTelemetry, err := setupTelemetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	// Adapters
	db, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.close()

	executor := db.executor
	switch {
	case cfg.DryRun:
		executor = service.NewDryRunExecutor(logger)
		logger.Info("dry-run mode: statements are validated but never executed")
	case cfg.ExplainOnly:
		executor = service.NewExplainOnlyExecutor(executor, db.explainPrefix)
		logger.Info("explain-only mode: queries return execution plans")
	}

	var notes map[string]domain.TableNotes
	var masks domain.ColumnMasks
	if cfg.PolicyFile != "" {
		pol, err := policy.LoadFromFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("loading policy: %w", err)
		}
		notes = pol.Notes()
		masks = pol.ColumnMasks()
		logger.Info("policy loaded",
			slog.String("file", cfg.PolicyFile),
			slog.Int("masked_columns", len(masks)),
		)
	}

	var auditor port.QueryAuditor = audit.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer fa.Close()
		auditor = fa
		logger.Info("audit logging enabled", slog.String("file", cfg.AuditLog))
	}

	var checker port.ReferenceChecker
	if cfg.ReferenceCheck == config.CheckParser {
		checker = domain.NewParserChecker()
	}

	// Services
	schemaSvc := service.NewSchemaService(db.introspector, cfg.IntrospectionConcurrency, notes)
	validator := service.NewValidator(schemaSvc, checker, logger, tracer, inst)
	querySvc := service.NewQueryService(validator, executor, auditor, logger, masks, tracer, inst)

	var askSvc *service.AskService
	if cfg.LLMAPIKey != "" {
		gen, err := llm.NewGenerator(llm.Config{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		})
		if err != nil {
			return fmt.Errorf("creating sql generator: %w", err)
		}
		askSvc = service.NewAskService(gen, schemaSvc, querySvc, cfg.Driver, logger, tracer)
		logger.Info("sql generation enabled", slog.String("llm.model", cfg.LLMModel))
	}

	mcpServer := mcp.NewServer(version, schemaSvc, querySvc, askSvc, logger, tracer, inst)

	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, cfg, logger, mcpServer, rest.NewRouter(schemaSvc, querySvc, askSvc, logger), prom)
	default:
		return serveStdio(ctx, logger, mcpServer)
	}
}

// setupTelemetry always builds the Prometheus instruments and adds the OTel
// ones when enabled. The returned shutdown func never fails the process.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (trace.Tracer, port.Instrumentation, *telemetry.PrometheusInstruments, func(), error) {
	prom := telemetry.NewPrometheusInstruments()
	if !cfg.OTelEnabled {
		return telemetry.NoopTracer(), prom, prom, func() {}, nil
	}

	provider, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName: "querygate",
		Version:     version,
		DBSystem:    dbSystem(cfg.Driver),
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	logger.Info("opentelemetry enabled")

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(sctx); err != nil {
			logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	inst := telemetry.Fanout{prom, provider.Instruments()}
	return provider.Tracer(), inst, prom, shutdown, nil
}

func serveStdio(ctx context.Context, logger *slog.Logger, mcpServer *mcpserver.MCPServer) error {
	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio")
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newHTTPHandler mounts MCP and the REST API behind bearer auth, and health
// and metrics without it.
func newHTTPHandler(cfg *config.Config, logger *slog.Logger, mcpServer *mcpserver.MCPServer, api *gin.Engine, prom *telemetry.PrometheusInstruments) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", bearerAuthMiddleware(mcpserver.NewStreamableHTTPServer(mcpServer), cfg.HTTPBearerToken))
	mux.Handle("/api/", bearerAuthMiddleware(api, cfg.HTTPBearerToken))
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", prom.Handler())
	return recoveryMiddleware(mux, logger)
}

func serveHTTP(ctx context.Context, cfg *config.Config, logger *slog.Logger, mcpServer *mcpserver.MCPServer, api *gin.Engine, prom *telemetry.PrometheusInstruments) error {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newHTTPHandler(cfg, logger, mcpServer, api, prom),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP and REST over http", slog.String("http.addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
