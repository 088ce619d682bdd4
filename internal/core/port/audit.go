package port

import "context"

// Audit outcomes.
const (
	OutcomeExecuted = "executed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// AuditEntry is one query decision. Reason is the validation reason code and
// is only set for rejected statements; Err holds the rejection or execution
// error.
type AuditEntry struct {
	ID           string
	Tool         string
	Question     string
	SQL          string
	RowsReturned int
	DurationMS   int64
	Reason       string
	Err          error
}

// Outcome classifies the entry. A rejection never reached the database.
func (e AuditEntry) Outcome() string {
	switch {
	case e.Reason != "":
		return OutcomeRejected
	case e.Err != nil:
		return OutcomeFailed
	default:
		return OutcomeExecuted
	}
}

// QueryAuditor records query audit events. Record must not block the caller
// on failure; implementations log or drop instead.
type QueryAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}
