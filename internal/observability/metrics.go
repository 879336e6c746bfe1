// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "controller_sizer"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Solver metrics
	SolvesTotal         *prometheus.CounterVec
	SolveDuration       prometheus.Histogram
	CandidatesEvaluated prometheus.Counter
	CandidatesFeasible  prometheus.Counter
	LastResultSetSize   prometheus.Gauge

	// Pricing metrics
	PriceFallbacks prometheus.Counter

	// Batch metrics
	BatchRowsTotal *prometheus.CounterVec
	BatchDuration  prometheus.Histogram

	// Storage and events
	PersistErrors *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers all metrics on reg. A nil reg uses a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		SolvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Total number of solves by outcome",
		}, []string{"outcome"}),
		SolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Wall time of a single solve",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		CandidatesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "candidates_enumerated_total",
			Help:      "Total number of expansion combinations enumerated",
		}),
		CandidatesFeasible: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "candidates_feasible_total",
			Help:      "Total number of combinations passing every capacity inequality",
		}),
		LastResultSetSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "last_result_set_size",
			Help:      "Number of candidates listed by the most recent solve",
		}),
		PriceFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fallbacks_total",
			Help:      "Total number of price lookups served from the fallback table",
		}),
		BatchRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "rows_total",
			Help:      "Total number of batch rows by status",
		}, []string{"status"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Wall time of a batch run",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		PersistErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "persist_errors_total",
			Help:      "Total number of failed run writes by target",
		}, []string{"target"}),
		gatherer: reg,
	}
}

// ObserveSolve records one solve.
func (m *Metrics) ObserveSolve(outcome string, duration time.Duration, enumerated, feasible int64, survivors int) {
	m.SolvesTotal.WithLabelValues(outcome).Inc()
	m.SolveDuration.Observe(duration.Seconds())
	m.CandidatesEvaluated.Add(float64(enumerated))
	m.CandidatesFeasible.Add(float64(feasible))
	m.LastResultSetSize.Set(float64(survivors))
}

// ObservePriceFallback counts a lookup served from the fallback table.
func (m *Metrics) ObservePriceFallback() {
	m.PriceFallbacks.Inc()
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(rows int, failed bool, duration time.Duration) {
	status := "ok"
	if failed {
		status = "failed"
	}
	m.BatchRowsTotal.WithLabelValues(status).Add(float64(rows))
	m.BatchDuration.Observe(duration.Seconds())
}

// ObservePersistError counts a failed write to target.
func (m *Metrics) ObservePersistError(target string) {
	m.PersistErrors.WithLabelValues(target).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
