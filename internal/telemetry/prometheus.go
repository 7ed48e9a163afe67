// ABOUTME: Prometheus collectors for the API server and ingestion pipeline.
// ABOUTME: Registered via promauto, exposed on /metrics by the serve command.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes request latency per route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "velo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RowsIngested counts CSV rows accepted into storage.
	RowsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velo_ingest_rows_total",
			Help: "Total number of CSV rows accepted",
		},
	)

	// RowsSkipped counts CSV rows dropped during decoding.
	RowsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velo_ingest_rows_skipped_total",
			Help: "Total number of malformed CSV rows skipped",
		},
	)

	// IngestDuration observes end-to-end CSV ingestion latency.
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "velo_ingest_duration_seconds",
			Help:    "CSV ingestion latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// MetricsRecomputed counts derived-metrics recomputations.
	MetricsRecomputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velo_metrics_recomputed_total",
			Help: "Total number of session metrics recomputations",
		},
	)

	// CacheOperations counts stats-cache operations by outcome.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velo_cache_operations_total",
			Help: "Total number of stats cache operations",
		},
		[]string{"operation", "status"},
	)
)
