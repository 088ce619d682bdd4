package telemetry

import (
	"context"

	"github.com/guillermoBallester/querygate/internal/core/port"
)

// Fanout forwards every measurement to each wrapped sink.
type Fanout []port.Instrumentation

func (f Fanout) RecordQueryDuration(ctx context.Context, ms float64) {
	for _, i := range f {
		i.RecordQueryDuration(ctx, ms)
	}
}

func (f Fanout) IncrementQueryCount(ctx context.Context) {
	for _, i := range f {
		i.IncrementQueryCount(ctx)
	}
}

func (f Fanout) IncrementQueryErrors(ctx context.Context) {
	for _, i := range f {
		i.IncrementQueryErrors(ctx)
	}
}

func (f Fanout) IncrementRejections(ctx context.Context, reason string) {
	for _, i := range f {
		i.IncrementRejections(ctx, reason)
	}
}

func (f Fanout) RecordToolDuration(ctx context.Context, ms float64) {
	for _, i := range f {
		i.RecordToolDuration(ctx, ms)
	}
}
