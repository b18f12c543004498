// Package audit records authentication outcomes through the structured logger.
package audit

import (
	"context"
	"log/slog"
	"time"

	"backoffice/internal/domain/service"
)

// slogTrail implements service.AuditTrail on top of slog. Every event carries
// a timestamp and a principal attribution ("unknown" for enumeration attempts)
// so account-takeover attempts can be reconstructed from the log stream alone.
type slogTrail struct {
	logger *slog.Logger
}

// New is the constructor for the slog-backed audit trail.
func New(logger *slog.Logger) service.AuditTrail {
	return &slogTrail{logger: logger.With(slog.String("channel", "audit"))}
}

// Record writes one audit event. Failures are logged at warn so they stand out
// in the stream; successes at info.
func (t *slogTrail) Record(ctx context.Context, event service.AuditEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.Time("at", event.Time),
		slog.String("event", event.Type),
		slog.String("principal_id", event.PrincipalID),
		slog.String("identity", event.Identity),
		slog.Bool("success", event.Success),
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}

	t.logger.LogAttrs(ctx, level, "auth audit", attrs...)
}
