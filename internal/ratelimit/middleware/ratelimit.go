// Package middleware limits mint attempts per caller.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cubemint/internal/ratelimit/metrics"
	"cubemint/internal/ratelimit/models"
	"cubemint/internal/ratelimit/observability"
	"cubemint/internal/ratelimit/ports"
	"cubemint/internal/ratelimit/store"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/circuit"
	"cubemint/pkg/platform/httputil"
	"cubemint/pkg/requestcontext"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute

	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
	headerStatus    = "X-RateLimit-Status"
)

// Middleware checks the configured bucket store and switches to an
// in-memory fallback while the store keeps failing.
type Middleware struct {
	primary  ports.BucketStore
	fallback ports.BucketStore
	breaker  *circuit.Breaker

	limit  int
	window time.Duration

	logger    *slog.Logger
	publisher ports.AuditPublisher
	metrics   *metrics.Metrics
	disabled  bool
}

type Option func(*Middleware)

// WithLimit sets the number of mint attempts allowed per window.
func WithLimit(limit int, window time.Duration) Option {
	return func(m *Middleware) {
		if limit > 0 {
			m.limit = limit
		}
		if window > 0 {
			m.window = window
		}
	}
}

func WithFallback(fallback ports.BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(m *Middleware) {
		m.publisher = publisher
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithDisabled turns the limiter into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(primary ports.BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary:  primary,
		fallback: store.NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(3)),
		limit:    DefaultLimit,
		window:   DefaultWindow,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("mint rate limiting disabled")
	}
	return m
}

// Mint limits requests per authenticated caller, or per client IP when the
// caller is unknown. It must run after the auth middleware.
func (m *Middleware) Mint(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := bucketKey(ctx)

		result, degraded, err := m.check(ctx, key)
		if err != nil {
			// Both stores failed; fail open rather than block the sale.
			m.logger.ErrorContext(ctx, "mint rate limit check failed", "error", err, "key", key)
			m.observe("error")
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result, degraded)
		if !result.Allowed {
			m.observe("denied")
			observability.LogAudit(ctx, m.logger, m.publisher, audit.EventRateLimitExceeded, key, "mint_rate_limit")
			writeExceeded(w, result)
			return
		}
		m.observe("allowed")
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool, error) {
	result, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.logger.InfoContext(ctx, "rate limit store recovered")
			m.setDegraded(false)
		}
		return result, false, nil
	}

	useFallback, change := m.breaker.RecordFailure()
	if change.Opened {
		m.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
		m.setDegraded(true)
	}
	if !useFallback || m.fallback == nil {
		return nil, false, err
	}
	result, err = m.fallback.Allow(ctx, key, m.limit, m.window)
	return result, true, err
}

func (m *Middleware) observe(outcome string) {
	if m.metrics != nil {
		m.metrics.IncrementChecks(outcome)
	}
}

func (m *Middleware) setDegraded(degraded bool) {
	if m.metrics != nil {
		m.metrics.SetDegraded(degraded)
	}
}

func bucketKey(ctx context.Context) string {
	if caller := requestcontext.Caller(ctx); !caller.IsZero() {
		return models.MintCallerKey(caller.String())
	}
	return models.MintIPKey(requestcontext.ClientIP(ctx))
}

func addHeaders(w http.ResponseWriter, result *models.Result, degraded bool) {
	w.Header().Set(headerLimit, strconv.Itoa(result.Limit))
	w.Header().Set(headerRemaining, strconv.Itoa(result.Remaining))
	w.Header().Set(headerReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set(headerStatus, "degraded")
	}
}

func writeExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:            "rate_limited",
		ErrorDescription: "too many mint attempts, try again later",
		RetryAfter:       result.RetryAfter,
		ResetAt:          result.ResetAt,
	})
}
