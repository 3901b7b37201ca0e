package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Ingestion Metrics
	UploadsTotal        *prometheus.CounterVec
	UploadDuration      *prometheus.HistogramVec
	DataPointsIngested  prometheus.Counter
	ParametersCreated   *prometheus.CounterVec
	SkippedCellsTotal   prometheus.Counter
	SyntheticTimestamps prometheus.Counter
	ParametersUpdated   prometheus.Counter
}

// NewMetricsRegistry registers all metrics on the default registerer.
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWith(prometheus.DefaultRegisterer)
}

// NewMetricsRegistryWith registers all metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewMetricsRegistryWith(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ftias_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ftias_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_db_queries_total",
				Help: "Total database queries by operation type",
			},
			[]string{"query_type"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ftias_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		// Ingestion Metrics
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_uploads_total",
				Help: "Uploads processed by file kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		UploadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ftias_upload_duration_seconds",
				Help:    "Upload processing time in seconds, including commit",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		),
		DataPointsIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ftias_data_points_ingested_total",
				Help: "Data points committed from CSV uploads",
			},
		),
		ParametersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftias_parameters_created_total",
				Help: "Parameters created by upload kind",
			},
			[]string{"kind"},
		),
		ParametersUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ftias_parameters_updated_total",
				Help: "Existing parameters changed by Excel imports",
			},
		),
		SkippedCellsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ftias_skipped_cells_total",
				Help: "Non-numeric CSV cells skipped during ingestion",
			},
		),
		SyntheticTimestamps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ftias_synthetic_timestamps_total",
				Help: "CSV rows whose timestamp was synthesized from the row number",
			},
		),
	}
}
