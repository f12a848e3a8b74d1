package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(aiCallsLatencyMs)
}

var aiCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_calls_latency_ms",
		Help:    "AI call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"op", "provider", "success"}, // op: extract|plan|chat|embed
)

func ObserveAICall(op, provider string, latencyMs int, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(op), norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
