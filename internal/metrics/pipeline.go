package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and provider metrics, registered explicitly by the services that
// use them (no init()).
var (
	// ChatRequestsTotal counts orchestrated chat requests by final outcome:
	// answered, refused_input, refused_output, error.
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_chat",
			Name:      "chat_requests_total",
			Help:      "Chat pipeline requests by outcome",
		},
		[]string{"outcome"},
	)

	// PipelineStageDuration observes per-stage latency in the chat pipeline.
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portfolio_chat",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Chat pipeline stage duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	// EmbeddingRequestsTotal counts embedding provider calls by status.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_chat",
			Name:      "embedding_requests_total",
			Help:      "Embedding provider requests by status",
		},
		[]string{"model", "status"},
	)

	// EmbeddingCacheTotal counts embedding cache lookups by result (hit/miss).
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_chat",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// RateLimitDecisions counts rate limiter verdicts by decision
	// (allowed/denied).
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_chat",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions",
		},
		[]string{"decision"},
	)

	// RateLimitActiveIdentifiers tracks identifiers with activity inside the
	// current window.
	RateLimitActiveIdentifiers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portfolio_chat",
			Name:      "rate_limit_active_identifiers",
			Help:      "Identifiers with requests in the current window",
		},
	)
)

// RegisterPipelineMetrics registers orchestrator pipeline metrics.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(ChatRequestsTotal, PipelineStageDuration)
}

// RegisterEmbeddingMetrics registers embedding provider and cache metrics.
func RegisterEmbeddingMetrics() {
	prometheus.MustRegister(EmbeddingRequestsTotal, EmbeddingCacheTotal)
}

// RegisterSafetyMetrics registers rate limiter metrics.
func RegisterSafetyMetrics() {
	prometheus.MustRegister(RateLimitDecisions, RateLimitActiveIdentifiers)
}
