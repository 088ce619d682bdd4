// Package mysql adapts MySQL to the querygate ports through database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/guillermoBallester/querygate/internal/adapter/sqldb"
)

// Open connects to the database named in dsn. Result columns are decoded
// with parseTime so DATETIME values come back as time.Time. A mysql:// prefix
// is accepted and stripped.
func Open(ctx context.Context, dsn string, opts sqldb.PoolOptions) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return nil, fmt.Errorf("parsing MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("MySQL DSN must name a database")
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating MySQL connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := sqldb.Configure(ctx, db, opts); err != nil {
		return nil, err
	}
	return db, nil
}
