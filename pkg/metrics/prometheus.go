// Package metrics provides Prometheus metrics for the evalrank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the evalrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Evaluation metrics
	scoresRecorded   prometheus.Counter
	invalidScores    prometheus.Counter
	evaluationResets prometheus.Counter
	evaluationSaves  prometheus.Counter

	// Ranking metrics
	reloads        prometheus.Counter
	reloadFailures prometheus.Counter
	reloadDuration prometheus.Histogram
	staffTracked   prometheus.Gauge
	lastReloadUnix prometheus.Gauge
	demoFallback   prometheus.Gauge

	// Export metrics
	exports      *prometheus.CounterVec
	exportErrors *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Dispatch queue metrics
	queueDepth      prometheus.Gauge
	queueRejections prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// customRegistry keeps our metrics separate from the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "evalrank",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_recorded_total",
		Help:      "Criterion scores recorded across all evaluation sessions",
	})

	m.invalidScores = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invalid_scores_total",
		Help:      "Score assignments rejected for being outside 1..5",
	})

	m.evaluationResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_resets_total",
		Help:      "Evaluation sessions reset to the unscored state",
	})

	m.evaluationSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_saves_total",
		Help:      "Evaluation aggregates persisted to the snapshot store",
	})

	m.reloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_reloads_total",
		Help:      "Full ranking reloads from the snapshot store",
	})

	m.reloadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_reload_failures_total",
		Help:      "Reloads that fell back to the demo dataset",
	})

	m.reloadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_reload_duration_milliseconds",
		Help:      "Time spent reloading and re-ranking the staff collection",
		Buckets:   m.histogramBuckets,
	})

	m.staffTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "staff_tracked",
		Help:      "Number of staff records in the current ranking",
	})

	m.lastReloadUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_reload_timestamp_seconds",
		Help:      "Unix timestamp of the last successful ranking reload",
	})

	m.demoFallback = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "demo_fallback_active",
		Help:      "1 when the ranking is serving the demo dataset, 0 otherwise",
	})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Report exports by kind",
	}, []string{"kind"})

	m.exportErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_errors_total",
		Help:      "Failed report exports by kind",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method and status code",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_depth",
		Help:      "Mutations waiting in the dispatch queue",
	})

	m.queueRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_rejections_total",
		Help:      "Mutations rejected because the dispatch queue was full or closed",
	})
}

// RecordScore increments the recorded scores counter.
func RecordScore() {
	globalManager.scoresRecorded.Inc()
}

// RecordInvalidScore increments the rejected scores counter.
func RecordInvalidScore() {
	globalManager.invalidScores.Inc()
}

// RecordEvaluationReset increments the evaluation resets counter.
func RecordEvaluationReset() {
	globalManager.evaluationResets.Inc()
}

// RecordEvaluationSave increments the persisted aggregates counter.
func RecordEvaluationSave() {
	globalManager.evaluationSaves.Inc()
}

// RecordReload increments the ranking reload counter.
func RecordReload() {
	globalManager.reloads.Inc()
}

// RecordReloadFailure increments the demo-fallback counter.
func RecordReloadFailure() {
	globalManager.reloadFailures.Inc()
}

// RecordReloadDuration records a reload duration in milliseconds.
func RecordReloadDuration(latencyMs float64) {
	globalManager.reloadDuration.Observe(latencyMs)
}

// UpdateStaffTracked sets the tracked staff gauge.
func UpdateStaffTracked(count int) {
	globalManager.staffTracked.Set(float64(count))
}

// UpdateLastReload sets the last reload timestamp gauge.
func UpdateLastReload(unixSeconds int64) {
	globalManager.lastReloadUnix.Set(float64(unixSeconds))
}

// UpdateDemoFallback flags whether the demo dataset is being served.
func UpdateDemoFallback(active bool) {
	if active {
		globalManager.demoFallback.Set(1)
		return
	}
	globalManager.demoFallback.Set(0)
}

// RecordExport increments the export counter for a report kind.
func RecordExport(kind string) {
	globalManager.exports.WithLabelValues(kind).Inc()
}

// RecordExportError increments the export error counter for a report kind.
func RecordExportError(kind string) {
	globalManager.exportErrors.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateQueueDepth sets the dispatch queue depth gauge.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// RecordQueueRejection increments the dispatch queue rejection counter.
func RecordQueueRejection() {
	globalManager.queueRejections.Inc()
}

// GetRegistry returns the registry all evalrank metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
