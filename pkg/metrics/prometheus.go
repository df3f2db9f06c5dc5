// Package metrics provides Prometheus metrics for the CampusConnect service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	// Gamification pipeline
	activitiesProcessed *prometheus.CounterVec
	activitiesDuplicate prometheus.Counter
	pointsAwarded       prometheus.Counter
	awardLatency        prometheus.Histogram
	leaderboardUpdates  prometheus.Counter
	leaderboardErrors   prometheus.Counter

	// Leaderboard repository
	leaderboardUsers        prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Recommendations
	recommendations          *prometheus.CounterVec
	recommendationLatency    *prometheus.HistogramVec
	recommendationCandidates *prometheus.HistogramVec

	// Events and mentorships
	eventRSVPs         prometheus.Counter
	eventCheckIns      prometheus.Counter
	mentorshipRequests *prometheus.CounterVec
	connectionRequests *prometheus.CounterVec
	knowledgeActions   *prometheus.CounterVec
	docstoreOperations *prometheus.CounterVec
	docstoreLatency    *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager.Store(NewManager())
}

// NewManager creates a metrics manager registered on its own registry unless
// one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "campusconnect",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

// Use installs m as the manager behind the package-level recorders.
func Use(m *Manager) error {
	if m == nil {
		return ErrNilManager
	}
	globalManager.Store(m)
	return nil
}

// GetRegistry returns the registry of the active manager.
func GetRegistry() *prometheus.Registry {
	return globalManager.Load().registry
}

// Registry returns the registry m is registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
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

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.activitiesProcessed = m.counterVec("activities_processed_total", "Activities awarded and applied to the leaderboard", "kind")
	m.activitiesDuplicate = m.counter("activities_duplicate_total", "Activities rejected as duplicates")
	m.pointsAwarded = m.counter("points_awarded_total", "Total points awarded")
	m.awardLatency = m.histogram("award_latency_milliseconds", "Time to compute an activity award in milliseconds")
	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Total number of leaderboard updates")
	m.leaderboardErrors = m.counter("leaderboard_errors_total", "Total number of leaderboard update errors")

	m.leaderboardUsers = m.gauge("leaderboard_users", "Users holding points on the leaderboard")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Leaderboard update latency in milliseconds")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Leaderboard query latency in milliseconds")

	m.queueSize = m.gauge("queue_size", "Current size of the activity queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum activity queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of activities enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of activities dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Activities rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing an activity")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.recommendations = m.counterVec("recommendations_total", "Recommendation requests served", "kind")
	m.recommendationLatency = m.histogramVec("recommendation_latency_milliseconds", "Recommendation latency in milliseconds", m.histogramBuckets, "kind")
	m.recommendationCandidates = m.histogramVec("recommendation_candidates", "Candidates scored per recommendation",
		[]float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}, "kind")

	m.eventRSVPs = m.counter("event_rsvps_total", "Total number of event RSVPs")
	m.eventCheckIns = m.counter("event_checkins_total", "Total number of event check-ins")
	m.mentorshipRequests = m.counterVec("mentorship_requests_total", "Mentorship requests by resulting status", "status")
	m.connectionRequests = m.counterVec("connection_requests_total", "Connection requests by resulting status", "status")
	m.knowledgeActions = m.counterVec("knowledge_actions_total", "Knowledge hub writes by action", "action")
	m.docstoreOperations = m.counterVec("docstore_operations_total", "Document store operations", "operation", "result")
	m.docstoreLatency = m.histogramVec("docstore_latency_milliseconds", "Document store latency in milliseconds", m.histogramBuckets, "operation")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
}

func current() *Manager {
	return globalManager.Load()
}

// RecordActivityProcessed counts an activity applied to the leaderboard.
func RecordActivityProcessed(kind string) {
	current().activitiesProcessed.WithLabelValues(kind).Inc()
}

// RecordActivityDuplicate counts a duplicate activity.
func RecordActivityDuplicate() {
	current().activitiesDuplicate.Inc()
}

// RecordPointsAwarded adds to the awarded points total. Non-positive values are ignored.
func RecordPointsAwarded(points int64) {
	if points > 0 {
		current().pointsAwarded.Add(float64(points))
	}
}

// RecordAwardLatency records award latency in milliseconds.
func RecordAwardLatency(latencyMs float64) {
	current().awardLatency.Observe(latencyMs)
}

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() {
	current().leaderboardUpdates.Inc()
}

// RecordLeaderboardError increments the leaderboard errors counter.
func RecordLeaderboardError() {
	current().leaderboardErrors.Inc()
}

// UpdateLeaderboardUsers sets the number of ranked users.
func UpdateLeaderboardUsers(count int) {
	current().leaderboardUsers.Set(float64(count))
}

// RecordRepositoryUpdateLatency records leaderboard update latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	current().repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records leaderboard query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	current().repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	current().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	current().queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	current().queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	current().queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	current().queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	current().queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	current().workerCount.Set(float64(count))
}

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) {
	current().workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	current().workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	current().workerErrors.Inc()
}

// RecordRecommendation records one recommendation request of the given kind.
func RecordRecommendation(kind string, candidates int, latencyMs float64) {
	m := current()
	m.recommendations.WithLabelValues(kind).Inc()
	m.recommendationCandidates.WithLabelValues(kind).Observe(float64(candidates))
	m.recommendationLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordEventRSVP increments the RSVP counter.
func RecordEventRSVP() {
	current().eventRSVPs.Inc()
}

// RecordEventCheckIn increments the check-in counter.
func RecordEventCheckIn() {
	current().eventCheckIns.Inc()
}

// RecordMentorshipRequest counts a mentorship request write by status.
func RecordMentorshipRequest(status string) {
	current().mentorshipRequests.WithLabelValues(status).Inc()
}

// RecordConnectionRequest counts a connection request write by status.
func RecordConnectionRequest(status string) {
	current().connectionRequests.WithLabelValues(status).Inc()
}

// RecordKnowledgeAction counts a knowledge hub write such as a vote or verification.
func RecordKnowledgeAction(action string) {
	current().knowledgeActions.WithLabelValues(action).Inc()
}

// RecordDocstoreOperation records a document store call and its outcome.
func RecordDocstoreOperation(operation, result string, latencyMs float64) {
	m := current()
	m.docstoreOperations.WithLabelValues(operation, result).Inc()
	m.docstoreLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	current().errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	current().errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}
