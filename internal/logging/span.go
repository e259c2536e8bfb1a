package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span marks a logical unit of work (a remote fetch, a thumbnail synthesis)
// so its log lines share an identifier and its duration is recorded.
type Span struct {
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a context whose logger carries the span name and a fresh
// span identifier, and returns a handle used to close the span.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx).With(
		slog.String("span_id", uuid.NewString()),
		slog.String("span_name", name),
	)
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{logger: logger, start: time.Now()}
}

// End finalizes the span and emits a completion log entry.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Debug("span completed", slog.Duration("duration", time.Since(s.start)))
}
