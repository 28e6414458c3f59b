// Package httpapi assembles the chi router in front of the sale and
// whitelist handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cubemint/internal/platform/metrics"
	ratelimitmw "cubemint/internal/ratelimit/middleware"
	salehandler "cubemint/internal/sale/handler"
	whitelisthandler "cubemint/internal/whitelist/handler"
	"cubemint/pkg/platform/httputil"
	"cubemint/pkg/platform/middleware/auth"
	"cubemint/pkg/platform/middleware/metadata"
	request "cubemint/pkg/platform/middleware/request"
	"cubemint/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router mounts. Limiter, Metrics and Gatherer
// are optional.
type Deps struct {
	Logger    *slog.Logger
	Sale      *salehandler.Handler
	Whitelist *whitelisthandler.Handler
	Tokens    auth.TokenValidator
	Limiter   *ratelimitmw.Middleware
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Health    map[string]HealthCheck
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", healthz(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	d.Sale.RegisterPublic(r)
	d.Whitelist.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller(d.Tokens, d.Logger))

		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Mint)
			}
			d.Sale.RegisterMint(r)
		})

		d.Sale.RegisterAdmin(r)
		d.Whitelist.RegisterAdmin(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
