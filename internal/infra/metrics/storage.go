package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(libraryEvictionsTotal, conversationResetsTotal, intentReplaysTotal)
}

var libraryEvictionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "music_library_evictions_total",
		Help: "Artifacts evicted oldest-first when the library cap is exceeded.",
	},
)

var conversationResetsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conversation_resets_total",
		Help: "Conversation logs truncated, by cause.",
	},
	[]string{"cause"}, // "idle" | "manual"
)

var intentReplaysTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "generation_intent_replays_total",
		Help: "Pending write-ahead intents replayed during entitlement reload.",
	},
)

func IncLibraryEviction() { libraryEvictionsTotal.Inc() }

func IncConversationReset(cause string) {
	conversationResetsTotal.WithLabelValues(norm(cause)).Inc()
}

func IncIntentReplay() { intentReplaysTotal.Inc() }
