// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SaleEventsProcessed   prometheus.Counter
	SaleEventsStored      prometheus.Counter
	SaleEventsDuplicate   prometheus.Counter
	EventProcessingErrors *prometheus.CounterVec

	// Ranking metrics
	RunsComputed     *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	ReportsGenerated prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulRun       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sales_kpi_lab"
	}

	return &Metrics{
		// Ingestion metrics
		SaleEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sale_events_processed_total",
			Help:      "Total number of sale events processed",
		}),
		SaleEventsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sale_events_stored_total",
			Help:      "Total number of sale events stored to database",
		}),
		SaleEventsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sale_events_duplicate_total",
			Help:      "Total number of sale events skipped as duplicates",
		}),
		EventProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_processing_errors_total",
			Help:      "Total number of event processing errors by type",
		}, []string{"error_type"}),

		// Ranking metrics
		RunsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "runs_total",
			Help:      "Total number of ranking runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "run_duration_seconds",
			Help:      "Ranking run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful ranking run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSaleProcessed increments the sale events processed counter.
func RecordSaleProcessed() {
	DefaultMetrics.SaleEventsProcessed.Inc()
}

// RecordSaleStored increments the stored counter and ingestion timestamp.
func RecordSaleStored(unixSeconds float64) {
	DefaultMetrics.SaleEventsStored.Inc()
	DefaultMetrics.LastSuccessfulIngestion.Set(unixSeconds)
}

// RecordSaleDuplicate increments the duplicate counter.
func RecordSaleDuplicate() {
	DefaultMetrics.SaleEventsDuplicate.Inc()
}

// RecordEventError records an event processing error.
func RecordEventError(errorType string) {
	DefaultMetrics.EventProcessingErrors.WithLabelValues(errorType).Inc()
}

// RecordRun records a ranking run.
func RecordRun(status string, durationSeconds float64) {
	DefaultMetrics.RunsComputed.WithLabelValues(status).Inc()
	DefaultMetrics.RunDuration.Observe(durationSeconds)
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
