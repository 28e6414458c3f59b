// Package ports defines the collaborators of the mint rate limiter.
package ports

import (
	"context"
	"time"

	"cubemint/internal/ratelimit/models"
	audit "cubemint/pkg/platform/audit"
)

// BucketStore manages sliding window counters.
type BucketStore interface {
	// Allow records one request against key when fewer than limit requests
	// fall inside the trailing window, and reports the outcome either way.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// AuditPublisher emits rate limit audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
