// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the warehouse engine.
type Metrics struct {
	// Staging metrics
	RowsNormalized *prometheus.CounterVec
	RowsRejected   *prometheus.CounterVec

	// Dimension snapshot metrics
	VersionsCreated   *prometheus.CounterVec
	VersionsClosed    *prometheus.CounterVec
	VersionsUnchanged *prometheus.CounterVec

	// Fact merge metrics
	FactsInserted  *prometheus.CounterVec
	FactsUpdated   *prometheus.CounterVec
	FactsSkipped   *prometheus.CounterVec
	FactsOrphaned  *prometheus.CounterVec
	MergesTotal    *prometheus.CounterVec
	WatermarkValue *prometheus.GaugeVec

	// Quality metrics
	ChecksTotal      *prometheus.CounterVec
	CheckFailingRows *prometheus.CounterVec

	// Run metrics
	ModelBuildDuration *prometheus.HistogramVec
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ecom_warehouse"
	}

	return &Metrics{
		// Staging metrics
		RowsNormalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "rows_normalized_total",
			Help:      "Total number of raw rows normalized into staging",
		}, []string{"model"}),
		RowsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "rows_rejected_total",
			Help:      "Total number of raw rows rejected by reason",
		}, []string{"model", "reason"}),

		// Dimension snapshot metrics
		VersionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "versions_created_total",
			Help:      "Total number of dimension versions inserted",
		}, []string{"dimension"}),
		VersionsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "versions_closed_total",
			Help:      "Total number of dimension versions closed",
		}, []string{"dimension"}),
		VersionsUnchanged: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "versions_unchanged_total",
			Help:      "Total number of incoming records with no attribute change",
		}, []string{"dimension"}),

		// Fact merge metrics
		FactsInserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "facts_inserted_total",
			Help:      "Total number of fact rows inserted",
		}, []string{"fact"}),
		FactsUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "facts_updated_total",
			Help:      "Total number of fact rows updated in place",
		}, []string{"fact"}),
		FactsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "facts_skipped_total",
			Help:      "Total number of fact rows skipped as stale",
		}, []string{"fact"}),
		FactsOrphaned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "facts_orphaned_total",
			Help:      "Total number of item rows without a parent order",
		}, []string{"fact"}),
		MergesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "merges_total",
			Help:      "Total number of merge invocations by status",
		}, []string{"fact", "status"}),
		WatermarkValue: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "watermark_timestamp",
			Help:      "Committed watermark as a Unix timestamp",
		}, []string{"fact"}),

		// Quality metrics
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "checks_total",
			Help:      "Total number of quality checks by status",
		}, []string{"model", "status"}),
		CheckFailingRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "check_failing_rows_total",
			Help:      "Total number of rows flagged by failing checks",
		}, []string{"model", "check"}),

		// Run metrics
		ModelBuildDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "model_build_duration_seconds",
			Help:      "Model build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model", "status"}),
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordStagingBuild records the outcome of one staging model build.
func RecordStagingBuild(model string, loaded int, rejectedByReason map[string]int) {
	DefaultMetrics.RowsNormalized.WithLabelValues(model).Add(float64(loaded))
	for reason, n := range rejectedByReason {
		DefaultMetrics.RowsRejected.WithLabelValues(model, reason).Add(float64(n))
	}
}

// RecordSnapshot records the outcome of one dimension snapshot build.
func RecordSnapshot(dimension string, created, closed, unchanged int) {
	DefaultMetrics.VersionsCreated.WithLabelValues(dimension).Add(float64(created))
	DefaultMetrics.VersionsClosed.WithLabelValues(dimension).Add(float64(closed))
	DefaultMetrics.VersionsUnchanged.WithLabelValues(dimension).Add(float64(unchanged))
}

// RecordMerge records the outcome of one fact merge invocation.
func RecordMerge(fact, status string, inserted, updated, skipped, orphaned int) {
	DefaultMetrics.MergesTotal.WithLabelValues(fact, status).Inc()
	DefaultMetrics.FactsInserted.WithLabelValues(fact).Add(float64(inserted))
	DefaultMetrics.FactsUpdated.WithLabelValues(fact).Add(float64(updated))
	DefaultMetrics.FactsSkipped.WithLabelValues(fact).Add(float64(skipped))
	DefaultMetrics.FactsOrphaned.WithLabelValues(fact).Add(float64(orphaned))
}

// SetWatermark updates the committed watermark gauge for a fact.
func SetWatermark(fact string, value time.Time) {
	DefaultMetrics.WatermarkValue.WithLabelValues(fact).Set(float64(value.Unix()))
}

// RecordCheck records one quality check outcome.
func RecordCheck(model, check string, passed bool, failingRows int64) {
	status := "pass"
	if !passed {
		status = "fail"
		DefaultMetrics.CheckFailingRows.WithLabelValues(model, check).Add(float64(failingRows))
	}
	DefaultMetrics.ChecksTotal.WithLabelValues(model, status).Inc()
}

// RecordModelBuild records a model build duration by status.
func RecordModelBuild(model, status string, seconds float64) {
	DefaultMetrics.ModelBuildDuration.WithLabelValues(model, status).Observe(seconds)
}

// RecordRun records a pipeline run.
func RecordRun(status string, seconds float64) {
	DefaultMetrics.RunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RunDuration.Observe(seconds)
}
