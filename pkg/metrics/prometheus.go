// Package metrics provides Prometheus metrics for the pong tournament service.
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

// Manager manages all Prometheus metrics for the pong service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Engine metrics
	mutations         *prometheus.CounterVec
	mutationLatency   *prometheus.HistogramVec
	tournaments       prometheus.Gauge
	teams             prometheus.Gauge
	matches           prometheus.Gauge
	completedMatches  prometheus.Gauge
	snapshotPublishes prometheus.Counter
	knockoutsStarted  prometheus.Counter
	tournamentsDone   prometheus.Counter

	// Persistence metrics
	persistLatency *prometheus.HistogramVec
	persistErrors  *prometheus.CounterVec

	// Mirror queue metrics
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDropped   prometheus.Counter
	queueDequeued  prometheus.Counter
	queueWaitTime  prometheus.Histogram
	mirrorWrites   *prometheus.CounterVec
	mirrorStale    prometheus.Counter
	mirrorRetries  prometheus.Counter
	mirrorLatency  prometheus.Histogram
	workerActive   prometheus.Gauge
	idempotentHits prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter
	toolCalls           *prometheus.CounterVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

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
		namespace:        "pong",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.mutations = m.counterVec("mutations_total", "Store mutations by operation and result", "operation", "result")
	m.mutationLatency = m.histogramVec("mutation_latency_milliseconds", "Store mutation latency in milliseconds, including persistence", "operation")
	m.tournaments = m.gauge("tournaments", "Number of tournaments held by the store")
	m.teams = m.gauge("teams", "Number of registered teams across all tournaments")
	m.matches = m.gauge("matches", "Number of scheduled matches across all tournaments")
	m.completedMatches = m.gauge("matches_completed", "Number of completed matches across all tournaments")
	m.snapshotPublishes = m.counter("snapshot_publishes_total", "Number of store snapshots published to readers")
	m.knockoutsStarted = m.counter("knockouts_started_total", "Number of tournaments that entered the knockout phase")
	m.tournamentsDone = m.counter("tournaments_completed_total", "Number of tournaments that crowned a champion")

	m.persistLatency = m.histogramVec("persist_latency_milliseconds", "Save latency per persistence backend", "backend")
	m.persistErrors = m.counterVec("persist_errors_total", "Failed saves and loads per persistence backend", "backend", "op")

	m.queueSize = m.gauge("mirror_queue_size", "Current number of pending mirror jobs")
	m.queueCapacity = m.gauge("mirror_queue_capacity", "Capacity of the mirror queue")
	m.queueEnqueued = m.counter("mirror_queue_enqueued_total", "Mirror jobs accepted by the queue")
	m.queueDropped = m.counter("mirror_queue_dropped_total", "Mirror jobs dropped because the queue was full")
	m.queueDequeued = m.counter("mirror_queue_dequeued_total", "Mirror jobs taken by workers")
	m.queueWaitTime = m.histogram("mirror_queue_wait_milliseconds", "Time a mirror job waited in the queue")
	m.mirrorWrites = m.counterVec("mirror_writes_total", "Mirror saves by result", "result")
	m.mirrorStale = m.counter("mirror_stale_skipped_total", "Mirror jobs skipped because a newer version was already written")
	m.mirrorRetries = m.counter("mirror_retries_total", "Mirror save retries")
	m.mirrorLatency = m.histogram("mirror_latency_milliseconds", "Mirror save latency in milliseconds")
	m.workerActive = m.gauge("mirror_workers_active", "Number of running mirror workers")
	m.idempotentHits = m.counter("idempotent_replays_total", "Requests answered from a replayed idempotency key")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpRateLimited = m.counter("http_rate_limited_total", "Requests rejected by the rate limiter")
	m.toolCalls = m.counterVec("mcp_tool_calls_total", "MCP tool calls by tool and result", "tool", "result")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordMutation counts a store mutation and its latency.
func RecordMutation(operation, result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.mutations.WithLabelValues(operation, result).Inc()
	globalManager.mutationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateTournamentTotals sets the store-wide size gauges.
func UpdateTournamentTotals(tournaments, teams, matches, completed int) {
	globalManager.tournaments.Set(float64(tournaments))
	globalManager.teams.Set(float64(teams))
	globalManager.matches.Set(float64(matches))
	globalManager.completedMatches.Set(float64(completed))
}

// IncrementSnapshotPublishes counts a published store snapshot.
func IncrementSnapshotPublishes() {
	globalManager.snapshotPublishes.Inc()
}

// RecordKnockoutStarted counts a tournament entering the bracket.
func RecordKnockoutStarted() {
	globalManager.knockoutsStarted.Inc()
}

// RecordTournamentCompleted counts a finished tournament.
func RecordTournamentCompleted() {
	globalManager.tournamentsDone.Inc()
}

// RecordPersistLatency observes a save on backend.
func RecordPersistLatency(backend string, latencyMs float64) {
	globalManager.persistLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordPersistError counts a failed load or save on backend.
func RecordPersistError(backend, op string) {
	globalManager.persistErrors.WithLabelValues(backend, op).Inc()
}

// UpdateQueueSize sets the mirror queue backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the mirror queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted mirror job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDropped counts a mirror job rejected by a full queue.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordQueueDequeue counts a mirror job handed to a worker and how long it waited.
func RecordQueueDequeue(waitMs float64) {
	globalManager.queueDequeued.Inc()
	globalManager.queueWaitTime.Observe(waitMs)
}

// RecordMirrorWrite counts a mirror save by result ("ok" or "error") and its latency.
func RecordMirrorWrite(result string, latencyMs float64) {
	globalManager.mirrorWrites.WithLabelValues(result).Inc()
	globalManager.mirrorLatency.Observe(latencyMs)
}

// RecordMirrorStale counts a skipped out-of-date mirror job.
func RecordMirrorStale() {
	globalManager.mirrorStale.Inc()
}

// RecordMirrorRetry counts a mirror save retry.
func RecordMirrorRetry() {
	globalManager.mirrorRetries.Inc()
}

// UpdateWorkerActiveCount sets the number of running mirror workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordIdempotentReplay counts a request short-circuited by its idempotency key.
func RecordIdempotentReplay() {
	globalManager.idempotentHits.Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected with 429.
func RecordRateLimited() {
	globalManager.httpRateLimited.Inc()
}

// RecordToolCall counts an MCP tool call.
func RecordToolCall(tool, result string) {
	globalManager.toolCalls.WithLabelValues(tool, result).Inc()
}

// RecordErrorByComponent records errors by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RefreshInterval is how often the process should push gauge updates.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom registry for use in HTTP handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
