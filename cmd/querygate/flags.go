package main

import (
	"flag"
	"io"
	"time"

	"github.com/guillermoBallester/querygate/internal/config"
)

// parseFlags maps CLI arguments onto config.Overrides. Only flags that were
// actually passed are set, so env vars keep their value otherwise.
func parseFlags(args []string) (config.Overrides, error) {
	fs := flag.NewFlagSet("querygate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		o config.Overrides

		envFile, databaseURL, driver, logLevel, policyFile string
		referenceCheck, transport, httpAddr, bearerToken   string
		maxRows, poolMaxConns, poolMinConns                int
		queryTimeout, poolMaxConnLifetime                  time.Duration
	)

	fs.StringVar(&envFile, "env-file", "", "load environment variables from this file instead of ./.env")
	fs.StringVar(&databaseURL, "database-url", "", "database connection URL or SQLite path")
	fs.StringVar(&driver, "driver", "", "database driver: postgres, mysql or sqlite")
	fs.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.IntVar(&maxRows, "max-rows", 0, "maximum rows returned per query")
	fs.DurationVar(&queryTimeout, "query-timeout", 0, "per-query timeout")
	fs.StringVar(&policyFile, "policy-file", "", "path to policy YAML")
	fs.StringVar(&referenceCheck, "reference-check", "", "reference checker: heuristic or parser")
	fs.StringVar(&transport, "transport", "", "MCP transport: stdio or http")
	fs.StringVar(&httpAddr, "http-addr", "", "listen address for the http transport")
	fs.StringVar(&bearerToken, "http-bearer-token", "", "bearer token required on /mcp and /api")
	fs.IntVar(&poolMaxConns, "pool-max-conns", 0, "maximum open connections")
	fs.IntVar(&poolMinConns, "pool-min-conns", 0, "minimum idle connections")
	fs.DurationVar(&poolMaxConnLifetime, "pool-max-conn-lifetime", 0, "maximum connection lifetime")
	fs.BoolVar(&o.OTelEnabled, "otel", false, "export traces and metrics over OTLP")
	fs.BoolVar(&o.DryRun, "dry-run", false, "validate statements but never execute them")
	fs.BoolVar(&o.ExplainOnly, "explain-only", false, "return the query plan instead of rows")
	fs.StringVar(&o.AuditLog, "audit-log", "", "append an NDJSON audit record per query to this file")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env-file":
			o.EnvFile = &envFile
		case "database-url":
			o.DatabaseURL = &databaseURL
		case "driver":
			o.Driver = &driver
		case "log-level":
			o.LogLevel = &logLevel
		case "max-rows":
			o.MaxRows = &maxRows
		case "query-timeout":
			o.QueryTimeout = &queryTimeout
		case "policy-file":
			o.PolicyFile = &policyFile
		case "reference-check":
			o.ReferenceCheck = &referenceCheck
		case "transport":
			o.Transport = &transport
		case "http-addr":
			o.HTTPAddr = &httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = &bearerToken
		case "pool-max-conns":
			n := int32(poolMaxConns)
			o.PoolMaxConns = &n
		case "pool-min-conns":
			n := int32(poolMinConns)
			o.PoolMinConns = &n
		case "pool-max-conn-lifetime":
			o.PoolMaxConnLifetime = &poolMaxConnLifetime
		}
	})

	return o, nil
}
