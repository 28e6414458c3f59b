package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubemint/internal/ratelimit/metrics"
	"cubemint/internal/ratelimit/models"
	"cubemint/internal/ratelimit/store"
	id "cubemint/pkg/domain"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/requestcontext"
)

var alice = id.MustIdentity("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

type failingStore struct{ calls int }

func (f *failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	f.calls++
	return nil, errors.New("redis: connection refused")
}

type recordingPublisher struct{ events []audit.Event }

func (p *recordingPublisher) Emit(_ context.Context, e audit.Event) error {
	p.events = append(p.events, e)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
}

func mintRequest(caller id.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/mint", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), "203.0.113.7", "test")
	if !caller.IsZero() {
		ctx = requestcontext.WithCaller(ctx, caller)
	}
	return req.WithContext(ctx)
}

func TestMint_LimitsPerCaller(t *testing.T) {
	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	mw := New(store.NewInMemoryBucketStore(), discard(),
		WithLimit(2, time.Minute),
		WithAuditPublisher(pub),
		WithMetrics(m),
	)
	h := mw.Mint(okHandler())

	for range 2 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, mintRequest(alice))
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "2", rr.Header().Get(headerLimit))
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(alice))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), `"error":"rate_limited"`)

	require.Len(t, pub.events, 1)
	assert.Equal(t, string(audit.EventRateLimitExceeded), pub.events[0].Action)
	assert.Equal(t, alice.String(), pub.events[0].Actor)
	assert.Equal(t, models.MintCallerKey(alice.String()), pub.events[0].Subject)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Checks.WithLabelValues("allowed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Checks.WithLabelValues("denied")))
}

func TestMint_AnonymousFallsBackToIP(t *testing.T) {
	mw := New(store.NewInMemoryBucketStore(), discard(), WithLimit(1, time.Minute))
	h := mw.Mint(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(id.Identity{}))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(id.Identity{}))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(alice))
	assert.Equal(t, http.StatusCreated, rr.Code, "caller bucket is separate from the IP bucket")
}

func TestMint_FailingStoreOpensBreakerAndUsesFallback(t *testing.T) {
	primary := &failingStore{}
	m := metrics.New(prometheus.NewRegistry())
	mw := New(primary, discard(), WithLimit(1, time.Minute), WithMetrics(m))
	h := mw.Mint(okHandler())

	// Below the failure threshold requests pass through unlimited.
	for range 4 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, mintRequest(alice))
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Empty(t, rr.Header().Get(headerStatus))
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(alice))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "degraded", rr.Header().Get(headerStatus))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Degraded))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(alice))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code, "fallback still enforces the limit")
	assert.Equal(t, 6, primary.calls, "primary is retried while open")
}

func TestMint_Disabled(t *testing.T) {
	primary := &failingStore{}
	h := New(primary, discard(), WithDisabled(true)).Mint(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, mintRequest(alice))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Zero(t, primary.calls)
}
