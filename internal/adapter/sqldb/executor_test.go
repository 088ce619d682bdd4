package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockExecutor(t *testing.T, maxRows int) (*Executor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewExecutor(db, true, maxRows, 5*time.Second), mock
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	exec, mock := newMockExecutor(t, 10)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("alice")).
			AddRow(int64(2), nil))
	mock.ExpectCommit()

	rows, err := exec.Execute(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": int64(1), "name": "alice"},
		{"id": int64(2), "name": nil},
	}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_MaxRows(t *testing.T) {
	t.Parallel()

	exec, mock := newMockExecutor(t, 2)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectCommit()

	rows, err := exec.Execute(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExecutor_EmptyResult(t *testing.T) {
	t.Parallel()

	exec, mock := newMockExecutor(t, 10)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	rows, err := exec.Execute(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExecutor_QueryError(t *testing.T) {
	t.Parallel()

	exec, mock := newMockExecutor(t, 10)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("table missing"))
	mock.ExpectRollback()

	_, err := exec.Execute(context.Background(), "SELECT * FROM gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing query")
	assert.Contains(t, err.Error(), "table missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_BeginError(t *testing.T) {
	t.Parallel()

	exec, mock := newMockExecutor(t, 10)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := exec.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
}

func TestConfigure_PingFailure(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("no route to host"))
	mock.ExpectClose()

	err = Configure(context.Background(), db, PoolOptions{MaxOpenConns: 4, PingTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route to host")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigure_OK(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing()

	require.NoError(t, Configure(context.Background(), db, PoolOptions{MaxOpenConns: 4}))
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}
