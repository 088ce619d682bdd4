// Package sqlite adapts SQLite files to the querygate ports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/guillermoBallester/querygate/internal/adapter/sqldb"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at path. A readOnly handle is opened with
// mode=ro so writes fail at the engine regardless of the statement.
func Open(ctx context.Context, path string, readOnly bool, opts sqldb.PoolOptions) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path, readOnly))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := sqldb.Configure(ctx, db, opts); err != nil {
		return nil, err
	}
	return db, nil
}

func dsn(path string, readOnly bool) string {
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if !readOnly {
		return "file:" + path
	}
	q := url.Values{}
	q.Set("mode", "ro")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return "file:" + path + "&" + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}
