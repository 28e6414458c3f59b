package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks   *prometheus.CounterVec
	Degraded prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cubemint_ratelimit_checks_total",
			Help: "Mint rate limit checks by outcome (allowed, denied, error)",
		}, []string{"outcome"}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cubemint_ratelimit_degraded",
			Help: "1 while the shared bucket store is failing and the in-memory fallback is used",
		}),
	}
}

func (m *Metrics) IncrementChecks(outcome string) {
	m.Checks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetDegraded(degraded bool) {
	if degraded {
		m.Degraded.Set(1)
		return
	}
	m.Degraded.Set(0)
}
