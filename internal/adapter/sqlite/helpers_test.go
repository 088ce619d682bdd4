package sqlite

import (
	"context"

	"github.com/guillermoBallester/querygate/internal/core/port"
)

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, port.AuditEntry) {}
func (nopAuditor) Close() error                            { return nil }
