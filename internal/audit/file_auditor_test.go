package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) []record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	var out []record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r), "line %d: %s", len(out)+1, scanner.Text())
		out = append(out, r)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestNewFileAuditor_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := NewFileAuditor("/nonexistent/dir/audit.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening audit log")
}

func TestFileAuditor_Outcomes(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	fa, err := NewFileAuditor(path)
	require.NoError(t, err)
	fa.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	fa.Record(ctx, port.AuditEntry{ID: "a", Tool: "query", SQL: "SELECT 1", RowsReturned: 1, DurationMS: 42})
	fa.Record(ctx, port.AuditEntry{
		ID:       "b",
		Tool:     "ask",
		Question: "who?",
		SQL:      "SELECT age FROM users",
		Reason:   domain.ReasonInvalidSchemaReference,
		Err:      fmt.Errorf("validation: %w", domain.ErrInvalidSchemaReference),
	})
	fa.Record(ctx, port.AuditEntry{ID: "c", SQL: "SELECT pg_sleep(9)", Err: errors.New("timeout")})
	require.NoError(t, fa.Close())

	recs := readRecords(t, path)
	require.Len(t, recs, 3)

	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "2025-03-01T12:00:00Z", recs[0].Timestamp)
	assert.Equal(t, port.OutcomeExecuted, recs[0].Outcome)
	assert.Equal(t, int64(42), recs[0].DurationMS)
	assert.Nil(t, recs[0].Error)

	assert.Equal(t, port.OutcomeRejected, recs[1].Outcome)
	assert.Equal(t, "who?", recs[1].Question)
	assert.Equal(t, domain.ReasonInvalidSchemaReference, recs[1].Reason)
	require.NotNil(t, recs[1].Error)
	assert.Contains(t, *recs[1].Error, "invalid schema reference")

	assert.Equal(t, port.OutcomeFailed, recs[2].Outcome)
	assert.Empty(t, recs[2].Reason)
}

func TestFileAuditor_ConcurrentWrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	fa, err := NewFileAuditor(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fa.Record(context.Background(), port.AuditEntry{Tool: "query", SQL: fmt.Sprintf("SELECT %d", i)})
		}()
	}
	wg.Wait()
	require.NoError(t, fa.Close())

	assert.Len(t, readRecords(t, path), 50)
}

func TestFileAuditor_Append(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for i := range 2 {
		fa, err := NewFileAuditor(path)
		require.NoError(t, err)
		fa.Record(context.Background(), port.AuditEntry{SQL: fmt.Sprintf("SELECT %d", i)})
		require.NoError(t, fa.Close())
	}

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	assert.Equal(t, "SELECT 0", recs[0].SQL)
	assert.Equal(t, "SELECT 1", recs[1].SQL)
}

func TestNoopAuditor(t *testing.T) {
	t.Parallel()
	var a port.QueryAuditor = NoopAuditor{}
	a.Record(context.Background(), port.AuditEntry{SQL: "SELECT 1"})
	assert.NoError(t, a.Close())
}
