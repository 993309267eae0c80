// Package metrics defines the Prometheus metric collectors used across the
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	GrantsIssuedTotal    prometheus.Counter
	ObjectsProcessed     *prometheus.CounterVec
	RowsParsedTotal      prometheus.Counter
	RowPublishesTotal    *prometheus.CounterVec
	BatchesTotal         *prometheus.CounterVec
	RecordsTotal         *prometheus.CounterVec
	NotificationsTotal   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		GrantsIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "upload_grants_issued_total",
				Help: "Total presigned upload grants issued.",
			},
		),
		ObjectsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_objects_processed_total",
				Help: "Total uploaded objects processed by outcome (ok, decode_error, read_error).",
			},
			[]string{"outcome"},
		),
		RowsParsedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "import_rows_parsed_total",
				Help: "Total CSV rows decoded from uploaded objects.",
			},
		),
		RowPublishesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_row_publishes_total",
				Help: "Total row publish attempts by status (ok, error).",
			},
			[]string{"status"},
		),
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_batches_total",
				Help: "Total consumed batches by outcome (success, partial, failed).",
			},
			[]string{"outcome"},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_records_total",
				Help: "Total catalog records by result (persisted, invalid, decode_error, store_error).",
			},
			[]string{"result"},
		),
		NotificationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "completion_notifications_total",
				Help: "Total completion notifications published.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.GrantsIssuedTotal,
		m.ObjectsProcessed,
		m.RowsParsedTotal,
		m.RowPublishesTotal,
		m.BatchesTotal,
		m.RecordsTotal,
		m.NotificationsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
