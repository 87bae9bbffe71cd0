package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizchat_chat_requests_total",
			Help: "Total number of chat requests by outcome (answered, fallback, error).",
		},
		[]string{"outcome"},
	)
	contextBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizchat_context_builds_total",
			Help: "Total number of data contexts built by kind (empty, data, degraded).",
		},
		[]string{"kind"},
	)
	contextBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vizchat_context_bytes",
			Help:    "Size of the rendered data context in bytes.",
			Buckets: prometheus.ExponentialBuckets(128, 4, 10),
		},
	)
	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizchat_model_calls_total",
			Help: "Total number of completion calls by provider and outcome (ok, empty, error).",
		},
		[]string{"provider", "outcome"},
	)
	modelLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vizchat_model_latency_seconds",
			Help:    "Completion call latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		contextBuildsTotal,
		contextBytes,
		modelCallsTotal,
		modelLatencySeconds,
	)
}

func ObserveChat(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveContext(kind string, size int) {
	contextBuildsTotal.WithLabelValues(kind).Inc()
	contextBytes.Observe(float64(size))
}

func ObserveModelCall(provider, outcome string, elapsed time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	modelCallsTotal.WithLabelValues(provider, outcome).Inc()
	modelLatencySeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
}
