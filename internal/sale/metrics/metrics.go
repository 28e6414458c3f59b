package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MintsTotal      *prometheus.CounterVec
	TokensIssued    *prometheus.CounterVec
	MintRejections  *prometheus.CounterVec
	MintLatency     prometheus.Histogram
	FreeMintedTotal prometheus.Gauge
	ConfigChanges   *prometheus.CounterVec
}

// New registers the sale metrics on reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MintsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cubemint_sale_mints_total",
			Help: "Total number of committed mints by phase",
		}, []string{"phase"}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cubemint_sale_tokens_issued_total",
			Help: "Total number of tokens issued by phase",
		}, []string{"phase"}),
		MintRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cubemint_sale_mint_rejections_total",
			Help: "Total number of rejected mints by error code",
		}, []string{"reason"}),
		MintLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cubemint_sale_mint_duration_seconds",
			Help:    "Time spent evaluating and committing a mint",
			Buckets: prometheus.DefBuckets,
		}),
		FreeMintedTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cubemint_sale_free_minted_total",
			Help: "Tokens issued without payment during presale",
		}),
		ConfigChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cubemint_sale_config_changes_total",
			Help: "Administrator configuration changes by field",
		}, []string{"field"}),
	}
}

func (m *Metrics) ObserveMint(phase string, quantity uint64, started time.Time) {
	m.MintsTotal.WithLabelValues(phase).Inc()
	m.TokensIssued.WithLabelValues(phase).Add(float64(quantity))
	m.MintLatency.Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncrementRejections(reason string) {
	m.MintRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetFreeMinted(total uint64) {
	m.FreeMintedTotal.Set(float64(total))
}

func (m *Metrics) IncrementConfigChanges(field string) {
	m.ConfigChanges.WithLabelValues(field).Inc()
}
