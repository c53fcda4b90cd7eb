package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopchat_chat_requests_total",
			Help: "Total number of chat pipeline invocations.",
		},
	)
	chatStageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopchat_chat_stage_failures_total",
			Help: "Chat pipeline failures by stage (schema, generate, sanitize, execute, format).",
		},
		[]string{"stage"},
	)
	chatUnsafeQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopchat_chat_unsafe_queries_total",
			Help: "Model outputs rejected by the SQL sanitizer.",
		},
	)
	chatFormatterFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopchat_chat_formatter_fallbacks_total",
			Help: "Answers produced by the rule-based formatter after a model formatting failure.",
		},
	)
	modelRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopchat_model_request_duration_seconds",
			Help:    "Language model call latency by purpose (sql, answer).",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose"},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		chatStageFailuresTotal,
		chatUnsafeQueriesTotal,
		chatFormatterFallbacksTotal,
		modelRequestDurationSeconds,
	)
}

func ObserveChatRequest() {
	chatRequestsTotal.Inc()
}

func ObserveChatStageFailure(stage string) {
	chatStageFailuresTotal.WithLabelValues(stage).Inc()
}

func ObserveUnsafeQuery() {
	chatUnsafeQueriesTotal.Inc()
}

func ObserveFormatterFallback() {
	chatFormatterFallbacksTotal.Inc()
}

func ObserveModelRequest(purpose string, elapsed time.Duration) {
	modelRequestDurationSeconds.WithLabelValues(purpose).Observe(elapsed.Seconds())
}
