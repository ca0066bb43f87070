// Package metrics exposes Prometheus counters for the conversion pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice_converter"

// Metrics holds the application collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documents        *prometheus.CounterVec
	rows             *prometheus.CounterVec
	strategyFailures *prometheus.CounterVec
	requests         *prometheus.CounterVec
	duration         prometheus.Histogram
	spoolSwept       prometheus.Counter
}

// New registers the application collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Rows contributed by each extraction strategy.",
		}, []string{"strategy"}),
		strategyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_failures_total",
			Help:      "Strategies abandoned for a document after an error or panic.",
		}, []string{"strategy"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Conversion requests, by response status code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting one request.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		spoolSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spool_files_swept_total",
			Help:      "Stale uploads removed by the spool sweeper.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.documents,
		m.rows,
		m.strategyFailures,
		m.requests,
		m.duration,
		m.spoolSwept,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Document counts a processed document.
func (m *Metrics) Document(kind, outcome string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.documents.WithLabelValues(kind, outcome).Inc()
}

// Rows counts rows produced by a strategy.
func (m *Metrics) Rows(strategy string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rows.WithLabelValues(strategy).Add(float64(n))
}

// StrategyFailure counts a strategy abandoned for a document.
func (m *Metrics) StrategyFailure(strategy string) {
	if m == nil {
		return
	}
	m.strategyFailures.WithLabelValues(strategy).Inc()
}

// Request counts an HTTP response.
func (m *Metrics) Request(code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(code).Inc()
}

// Duration observes the time taken by a conversion started at start.
func (m *Metrics) Duration(start time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
}

// SpoolSwept counts uploads removed by the sweeper.
func (m *Metrics) SpoolSwept(n int) {
	if m == nil || n == 0 {
		return
	}
	m.spoolSwept.Add(float64(n))
}
