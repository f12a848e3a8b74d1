package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(chatStreamsTotal, chatTokensStreamedTotal)
}

var chatStreamsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_streams_total",
		Help: "Chat streams by terminal status.",
	},
	[]string{"status"}, // 'done', 'error'
)

var chatTokensStreamedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chat_tokens_streamed_total",
		Help: "Total completion tokens forwarded to chat callers.",
	},
)

func IncChatStream(status string) {
	chatStreamsTotal.WithLabelValues(norm(status)).Inc()
}

func AddChatTokens(n int) {
	chatTokensStreamedTotal.Add(float64(n))
}
