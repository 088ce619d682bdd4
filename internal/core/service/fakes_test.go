package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIntrospector serves a fixed schema. It is safe for concurrent use.
type fakeIntrospector struct {
	tables     map[string][]domain.Column
	order      []string
	tablesErr  error
	columnsErr map[string]error

	listTablesCalls atomic.Int64
}

func newFakeIntrospector(tables ...domain.TableSchema) *fakeIntrospector {
	f := &fakeIntrospector{tables: make(map[string][]domain.Column), columnsErr: make(map[string]error)}
	for _, t := range tables {
		f.order = append(f.order, t.Name)
		f.tables[t.Name] = t.Columns
	}
	return f
}

func (f *fakeIntrospector) ListTables(context.Context) ([]string, error) {
	f.listTablesCalls.Add(1)
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return append([]string(nil), f.order...), nil
}

func (f *fakeIntrospector) ListColumns(ctx context.Context, table string) ([]domain.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.columnsErr[table]; err != nil {
		return nil, err
	}
	return f.tables[table], nil
}

func usersIntrospector() *fakeIntrospector {
	return newFakeIntrospector(domain.TableSchema{
		Name:    "users",
		Columns: []domain.Column{{Name: "id", DataType: "integer"}, {Name: "name", DataType: "text"}, {Name: "email", DataType: "text"}},
	})
}

type mockExecutor struct {
	mu      sync.Mutex
	calls   int
	lastSQL string
	result  []map[string]any
	err     error
}

func (m *mockExecutor) Execute(_ context.Context, sql string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSQL = sql
	return m.result, m.err
}

func (m *mockExecutor) called() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls > 0
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []port.AuditEntry
}

func (a *recordingAuditor) Record(_ context.Context, e port.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAuditor) Close() error { return nil }

type recordingInstrumentation struct {
	port.NoopInstrumentation
	mu         sync.Mutex
	rejections map[string]int
	queries    int
	errors     int
}

func newRecordingInstrumentation() *recordingInstrumentation {
	return &recordingInstrumentation{rejections: make(map[string]int)}
}

func (r *recordingInstrumentation) IncrementRejections(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections[reason]++
}

func (r *recordingInstrumentation) IncrementQueryCount(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
}

func (r *recordingInstrumentation) IncrementQueryErrors(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
}

type fakeGenerator struct {
	sql     string
	err     error
	lastReq port.GenerationRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req port.GenerationRequest) (string, error) {
	g.lastReq = req
	return g.sql, g.err
}
