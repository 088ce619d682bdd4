// Package audit writes one record per query decision, executed or rejected.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/guillermoBallester/querygate/internal/core/port"
)

// record is one NDJSON line.
type record struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"ts"`
	Tool         string  `json:"tool,omitempty"`
	Question     string  `json:"question,omitempty"`
	SQL          string  `json:"sql"`
	Outcome      string  `json:"outcome"`
	Reason       string  `json:"reason,omitempty"`
	RowsReturned int     `json:"rows_returned"`
	DurationMS   int64   `json:"duration_ms"`
	Error        *string `json:"error"`
}

func newRecord(e port.AuditEntry, now time.Time) record {
	r := record{
		ID:           e.ID,
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		Tool:         e.Tool,
		Question:     e.Question,
		SQL:          e.SQL,
		Reason:       e.Reason,
		RowsReturned: e.RowsReturned,
		DurationMS:   e.DurationMS,
		Outcome:      e.Outcome(),
	}
	if e.Err != nil {
		s := e.Err.Error()
		r.Error = &s
	}
	return r
}

// FileAuditor appends audit records as NDJSON to a file.
type FileAuditor struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

// NewFileAuditor opens (or creates) the file at path for append-only writing.
func NewFileAuditor(path string) (*FileAuditor, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileAuditor{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Record is best-effort: an audit write failure never fails the query.
func (a *FileAuditor) Record(_ context.Context, entry port.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.enc.Encode(newRecord(entry, a.now()))
}

func (a *FileAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}

// NoopAuditor discards all audit entries.
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, port.AuditEntry) {}
func (NoopAuditor) Close() error                            { return nil }
