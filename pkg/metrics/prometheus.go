// Package metrics provides Prometheus metrics for the benchmark service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Scores
	scoreUpdates    *prometheus.CounterVec
	scoreComputes   prometheus.Counter
	gapComputations prometheus.Counter
	localUsers      prometheus.Gauge
	shareCodes      *prometheus.CounterVec

	// Sync pipeline
	eventsProcessed    prometheus.Counter
	eventsDuplicate    prometheus.Counter
	eventsDropped      prometheus.Counter
	eventsFailed       prometheus.Counter
	processingLatency  prometheus.Histogram
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter

	// Remote store
	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec

	// Leaderboard
	leaderboardProfiles prometheus.Gauge
	leaderboardUpdates  prometheus.Counter
	leaderboardLatency  prometheus.Histogram

	// Exports
	reportsGenerated *prometheus.CounterVec
	reportsSent      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Request and sync latencies are recorded in milliseconds.
var latencyBucketsMs = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // bucket layout

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "satoshi",
		subsystem:      "benchmark",
		latencyBuckets: latencyBucketsMs,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.latencyBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.scoreUpdates = m.counterVec("score_updates_total", "Local score updates by category", "category")
	m.scoreComputes = m.counter("score_computations_total", "Overall score computations")
	m.gapComputations = m.counter("gap_computations_total", "Gap analyses computed")
	m.localUsers = m.gauge("local_users", "Named score sets held in the local overlay")
	m.shareCodes = m.counterVec("share_codes_total", "Share code operations by kind, direction and outcome", "kind", "direction", "outcome")

	m.eventsProcessed = m.counter("sync_events_processed_total", "Score change events pushed to the remote store")
	m.eventsDuplicate = m.counter("sync_events_duplicate_total", "Score change events skipped as duplicates")
	m.eventsDropped = m.counter("sync_events_dropped_total", "Score change events dropped because the queue was full")
	m.eventsFailed = m.counter("sync_events_failed_total", "Score change events the remote store rejected")
	m.processingLatency = m.histogram("sync_processing_latency_milliseconds", "Time to push one score change", m.latencyBuckets)
	m.queueSize = m.gauge("queue_size", "Current size of the sync queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum sync queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Sync queue utilization (size / capacity)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Messages enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Messages dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue failures")
	m.workerCount = m.gauge("worker_count", "Running sync workers")
	m.workerErrors = m.counter("worker_errors_total", "Sync worker errors")

	m.remoteRequests = m.counterVec("remote_requests_total", "Remote store requests by operation and outcome", "op", "outcome")
	m.remoteLatency = m.histogramVec("remote_request_duration_milliseconds", "Remote store request latency", "op")
	m.cacheLookups = m.counterVec("cache_lookups_total", "Cache lookups by cache and result", "cache", "result")

	m.leaderboardProfiles = m.gauge("leaderboard_profiles", "Profiles ranked on the leaderboard")
	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Leaderboard upserts")
	m.leaderboardLatency = m.histogram("leaderboard_update_latency_milliseconds", "Leaderboard upsert latency", m.latencyBuckets)

	m.reportsGenerated = m.counterVec("reports_generated_total", "Rendered reports by format", "format")
	m.reportsSent = m.counterVec("reports_sent_total", "Report e-mails by outcome", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")
	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and kind", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordScoreUpdate counts a local score change for category.
func RecordScoreUpdate(category string) {
	globalManager.scoreUpdates.WithLabelValues(category).Inc()
}

// RecordScoreComputed counts an overall score computation.
func RecordScoreComputed() { globalManager.scoreComputes.Inc() }

// RecordGapComputed counts a gap analysis.
func RecordGapComputed() { globalManager.gapComputations.Inc() }

// UpdateLocalUsers sets the number of named score sets.
func UpdateLocalUsers(n int) { globalManager.localUsers.Set(float64(n)) }

// RecordShareCode counts a share code encode or decode. An empty decode result
// counts as "empty".
func RecordShareCode(kind, direction string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "empty"
	}
	globalManager.shareCodes.WithLabelValues(kind, direction, outcome).Inc()
}

// RecordEventProcessed counts a pushed score change.
func RecordEventProcessed() { globalManager.eventsProcessed.Inc() }

// RecordEventDuplicate counts a skipped duplicate.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordEventDropped counts an event lost to a full queue.
func RecordEventDropped() { globalManager.eventsDropped.Inc() }

// RecordEventFailed counts an event the remote store rejected.
func RecordEventFailed() { globalManager.eventsFailed.Inc() }

// RecordProcessingLatency records the push latency of one event.
func RecordProcessingLatency(latencyMs float64) { globalManager.processingLatency.Observe(latencyMs) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordRemoteRequest counts a remote call and records its latency.
func RecordRemoteRequest(op, outcome string, latencyMs float64) {
	globalManager.remoteRequests.WithLabelValues(op, outcome).Inc()
	globalManager.remoteLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(cache, result).Inc()
}

// UpdateLeaderboardProfiles sets the ranked profile count.
func UpdateLeaderboardProfiles(count int) { globalManager.leaderboardProfiles.Set(float64(count)) }

// RecordLeaderboardUpdate counts an upsert and records its latency.
func RecordLeaderboardUpdate(latencyMs float64) {
	globalManager.leaderboardUpdates.Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
}

// RecordReportGenerated counts a rendered report.
func RecordReportGenerated(format string) {
	globalManager.reportsGenerated.WithLabelValues(format).Inc()
}

// RecordReportSent counts a report e-mail attempt.
func RecordReportSent(outcome string) {
	globalManager.reportsSent.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited(endpoint string) {
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry the service metrics live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
