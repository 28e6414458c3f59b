// Package observability provides audit logging helpers for the ratelimit module.
package observability

import (
	"context"
	"log/slog"

	"cubemint/internal/ratelimit/ports"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/requestcontext"
)

// LogAudit logs a security audit line and forwards it to the publisher.
// subject is the bucket key the decision applied to.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher ports.AuditPublisher, event audit.AuditEvent, subject, reason string) {
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Caller(ctx)

	if logger != nil {
		logger.WarnContext(ctx, string(event),
			"event", string(event),
			"subject", subject,
			"reason", reason,
			"request_id", requestID,
			"log_type", "audit",
		)
	}
	if publisher == nil {
		return
	}

	ev := audit.Event{
		Action:    string(event),
		Subject:   subject,
		Reason:    reason,
		Decision:  "denied",
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	if !actor.IsZero() {
		ev.Actor = actor.String()
	}
	if err := publisher.Emit(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
