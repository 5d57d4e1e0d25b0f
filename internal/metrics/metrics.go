package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for risk aggregation and certification.
type Metrics struct {
	// Recomputation latency of the risk snapshot
	AggregationLatency prometheus.Histogram

	// Failed recomputations, e.g. malformed transactions
	AggregationErrors prometheus.Counter

	// Certification outcomes: signed, failed, insufficient_data, rejected
	CertificationOutcome *prometheus.CounterVec

	// Signing latency including key access
	SigningLatency prometheus.Histogram
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AggregationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgercert_risk_aggregation_duration_seconds",
			Help:    "Duration of risk profile recomputation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		AggregationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgercert_risk_aggregation_errors_total",
			Help: "Total risk recomputations rejected",
		}),

		CertificationOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgercert_certification_outcomes_total",
			Help: "Total certification requests by outcome",
		}, []string{"outcome"}),

		SigningLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgercert_certification_signing_duration_seconds",
			Help:    "Duration of certificate signing",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveAggregation records one recomputation of the risk snapshot.
func (m *Metrics) ObserveAggregation(d time.Duration, err error) {
	if m == nil {
		return
	}

	m.AggregationLatency.Observe(d.Seconds())

	if err != nil {
		m.AggregationErrors.Inc()
	}
}

// ObserveCertification records a certification outcome. Zero durations mark
// requests rejected before signing and are not timed.
func (m *Metrics) ObserveCertification(outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.CertificationOutcome.WithLabelValues(outcome).Inc()

	if d > 0 {
		m.SigningLatency.Observe(d.Seconds())
	}
}
