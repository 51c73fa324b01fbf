package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labboard_mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	AgentCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labboard_agent_call_latency_ms",
			Help:    "Peer-review agent call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"endpoint", "status"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labboard_db_slow_queries_total",
			Help: "Queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	ProgressRecalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labboard_progress_recalculations_total",
			Help: "Project overall-progress recalculations",
		},
		[]string{"trigger", "result"}, // trigger: event, cli
	)

	ChecklistToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labboard_checklist_toggles_total",
			Help: "Checklist item completion toggles",
		},
		[]string{"completed"},
	)

	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labboard_outbox_published_total",
			Help: "Outbox events dispatched to the broker",
		},
		[]string{"event_type", "result"},
	)
)

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordAgentCallLatency(endpoint, status string, duration time.Duration) {
	AgentCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// IncrementSlowQuery counts a slow statement. Callers pass a truncated SQL
// text to keep label cardinality bounded.
func IncrementSlowQuery(statement string) {
	SlowQueryCount.WithLabelValues(statement).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementRecalculation(trigger, result string) {
	ProgressRecalculations.WithLabelValues(trigger, result).Inc()
}

func IncrementChecklistToggle(completed bool) {
	label := "false"
	if completed {
		label = "true"
	}
	ChecklistToggles.WithLabelValues(label).Inc()
}

func IncrementOutboxPublished(eventType, result string) {
	OutboxPublished.WithLabelValues(eventType, result).Inc()
}
