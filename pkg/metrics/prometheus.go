// Package metrics provides Prometheus metrics for the trader heatmap service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Drop reasons used as the "reason" label of rows_dropped_total.
const (
	DropOutsideWindow = "outside_window"
	DropMissingEvent  = "missing_event"
	DropDuplicate     = "duplicate"
)

// Manager manages all Prometheus metrics for the heatmap service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline metrics
	rowsRead         prometheus.Counter
	rowsDropped      *prometheus.CounterVec
	recordsCleaned   prometheus.Gauge
	reportsGenerated *prometheus.CounterVec
	viewsEmpty       *prometheus.CounterVec
	inputErrors      *prometheus.CounterVec
	pipelineLatency  prometheus.Histogram
	renderLatency    *prometheus.HistogramVec
	uploadBytes      prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heatmap",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rowsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_read_total"),
		Help:        "Total number of CSV data rows read",
		ConstLabels: labels,
	})

	m.rowsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_dropped_total"),
		Help:        "Rows silently dropped during cleaning, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.recordsCleaned = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_cleaned"),
		Help:        "Number of cleaned records in the most recent report",
		ConstLabels: labels,
	})

	m.reportsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reports_generated_total"),
		Help:        "Reports generated, by input mode",
		ConstLabels: labels,
	}, []string{"mode"})

	m.viewsEmpty = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("views_empty_total"),
		Help:        "Views skipped because they held no records, by view",
		ConstLabels: labels,
	}, []string{"view"})

	m.inputErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("input_errors_total"),
		Help:        "Fatal input errors that rejected a whole file, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.pipelineLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipeline_latency_milliseconds"),
		Help:        "End-to-end latency of one report pipeline run in milliseconds",
		Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		ConstLabels: labels,
	})

	m.renderLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("render_latency_milliseconds"),
		Help:        "Grid rendering latency in milliseconds, by output format",
		Buckets:     []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		ConstLabels: labels,
	}, []string{"format"})

	m.uploadBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("upload_bytes"),
		Help:        "Size of uploaded CSV files in bytes",
		Buckets:     prometheus.ExponentialBuckets(1024, 4, 8),
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by endpoint, method and type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Allocated heap memory in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})
}

// RecordRowsRead adds n to the rows read counter.
func RecordRowsRead(n int) {
	globalManager.RecordRowsRead(n)
}

// RecordRowsDropped adds n to the dropped rows counter for reason.
func RecordRowsDropped(reason string, n int) {
	globalManager.RecordRowsDropped(reason, n)
}

// UpdateRecordsCleaned sets the cleaned record gauge.
func UpdateRecordsCleaned(n int) {
	globalManager.UpdateRecordsCleaned(n)
}

// RecordReportGenerated increments the report counter for mode.
func RecordReportGenerated(mode string) {
	globalManager.RecordReportGenerated(mode)
}

// RecordViewEmpty increments the empty view counter.
func RecordViewEmpty(view string) {
	globalManager.RecordViewEmpty(view)
}

// RecordInputError increments the fatal input error counter for kind.
func RecordInputError(kind string) {
	globalManager.RecordInputError(kind)
}

// RecordPipelineLatency records one pipeline run.
func RecordPipelineLatency(latencyMs float64) {
	globalManager.RecordPipelineLatency(latencyMs)
}

// RecordRenderLatency records rendering time for format.
func RecordRenderLatency(format string, latencyMs float64) {
	globalManager.RecordRenderLatency(format, latencyMs)
}

// RecordUploadBytes records the size of an uploaded file.
func RecordUploadBytes(n int64) {
	globalManager.RecordUploadBytes(n)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.UpdateSystemMemoryUsage(bytes)
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.UpdateSystemGoroutineCount(count)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Manager methods. Every method is a no-op when metrics are disabled.

func (m *Manager) RecordRowsRead(n int) {
	if m.enabled {
		m.rowsRead.Add(float64(n))
	}
}

func (m *Manager) RecordRowsDropped(reason string, n int) {
	if m.enabled && n > 0 {
		m.rowsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Manager) UpdateRecordsCleaned(n int) {
	if m.enabled {
		m.recordsCleaned.Set(float64(n))
	}
}

func (m *Manager) RecordReportGenerated(mode string) {
	if m.enabled {
		m.reportsGenerated.WithLabelValues(mode).Inc()
	}
}

func (m *Manager) RecordViewEmpty(view string) {
	if m.enabled {
		m.viewsEmpty.WithLabelValues(view).Inc()
	}
}

func (m *Manager) RecordInputError(kind string) {
	if m.enabled {
		m.inputErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Manager) RecordPipelineLatency(latencyMs float64) {
	if m.enabled {
		m.pipelineLatency.Observe(latencyMs)
	}
}

func (m *Manager) RecordRenderLatency(format string, latencyMs float64) {
	if m.enabled {
		m.renderLatency.WithLabelValues(format).Observe(latencyMs)
	}
}

func (m *Manager) RecordUploadBytes(n int64) {
	if m.enabled {
		m.uploadBytes.Observe(float64(n))
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}
