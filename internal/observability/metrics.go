package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stage names used as metric labels.
const (
	StageAccept = "accept"
	StageText   = "text"
	StageTables = "tables"
	StageFormat = "format"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	stageFailures  *prometheus.CounterVec
	pagesOCR       prometheus.Counter
	tablesDetected prometheus.Counter
}

// NewMetrics creates collectors registered on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabular_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabular_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"stage"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabular_stage_failures_total",
				Help: "Pipeline stage failures by error type",
			},
			[]string{"stage", "type"},
		),
		pagesOCR: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tabular_pages_ocr_total",
				Help: "Pages or images passed through OCR",
			},
		),
		tablesDetected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tabular_tables_detected_total",
				Help: "Tables returned by the table detector",
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.stageDuration,
		m.stageFailures,
		m.pagesOCR,
		m.tablesDetected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest counts a finished HTTP request.
func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StageFailed counts a stage failure.
func (m *Metrics) StageFailed(stage, errType string) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(stage, errType).Inc()
}

// PageRecognized counts one OCR pass.
func (m *Metrics) PageRecognized() {
	if m == nil {
		return
	}
	m.pagesOCR.Inc()
}

// TablesDetected adds n detected tables.
func (m *Metrics) TablesDetected(n int) {
	if m == nil {
		return
	}
	m.tablesDetected.Add(float64(n))
}
