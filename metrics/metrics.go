/*
Package metrics provides Prometheus observability for the compliance engine.

PURPOSE:
  Counts evaluations, violations by kind, and batch failures, tracks the
  compliance rate of the last run, and times nothing: evaluation is pure
  CPU work and latency lives at the HTTP layer.

REGISTRY:
  Metrics register against a private registry owned by the Metrics value,
  so tests and repeated constructions never collide. Handler() exposes
  that registry in Prometheus text format.

METHODS:
  All methods are nil-safe. Components hold a *Metrics that may be nil
  when observability is not wired, and calls become no-ops.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	registry *prometheus.Registry

	Evaluations     prometheus.Counter
	Violations      *prometheus.CounterVec
	BatchFailures   prometheus.Counter
	BatchSize       prometheus.Histogram
	RatesRefresh    *prometheus.CounterVec
	ComplianceRate  prometheus.Gauge
	RulesRegistered prometheus.Gauge
}

// New creates a Metrics instance with every engine metric registered against
// a fresh private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "compliance_evaluations_total",
			Help: "Total wage records evaluated",
		}),
		Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_violations_total",
			Help: "Total violations found, by kind",
		}, []string{"kind"}),
		BatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "compliance_batch_failures_total",
			Help: "Total records that failed evaluation inside a batch",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_batch_size",
			Help:    "Records per batch evaluation request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		RatesRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_rates_refresh_total",
			Help: "Statutory rates feed refresh attempts, by outcome",
		}, []string{"outcome"}),
		ComplianceRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "compliance_last_run_rate",
			Help: "Compliance rate of the most recent evaluation run",
		}),
		RulesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "compliance_rules_registered",
			Help: "Number of rules in the active registry",
		}),
	}
}

// Handler serves the private registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementEvaluations records n completed record evaluations.
func (m *Metrics) IncrementEvaluations(n int) {
	if m != nil && n > 0 {
		m.Evaluations.Add(float64(n))
	}
}

// IncrementViolation records one violation of the given kind.
func (m *Metrics) IncrementViolation(kind string) {
	if m != nil {
		m.Violations.WithLabelValues(kind).Inc()
	}
}

// IncrementBatchFailures records n records that could not be evaluated.
func (m *Metrics) IncrementBatchFailures(n int) {
	if m != nil && n > 0 {
		m.BatchFailures.Add(float64(n))
	}
}

// ObserveBatchSize records the size of one batch request.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// IncrementRatesRefresh records one feed refresh attempt. Outcome is "ok"
// or "error".
func (m *Metrics) IncrementRatesRefresh(outcome string) {
	if m != nil {
		m.RatesRefresh.WithLabelValues(outcome).Inc()
	}
}

// SetComplianceRate records the compliance rate of the latest run.
func (m *Metrics) SetComplianceRate(rate float64) {
	if m != nil {
		m.ComplianceRate.Set(rate)
	}
}

// SetRulesRegistered records the active rule count.
func (m *Metrics) SetRulesRegistered(n int) {
	if m != nil {
		m.RulesRegistered.Set(float64(n))
	}
}
