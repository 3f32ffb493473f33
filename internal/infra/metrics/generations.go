package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(generationsTotal, generationLatencyMs, entitlementBlocks, upgradePrompts)
}

var generationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "music_generations_total",
		Help: "Music generations by tier and outcome.",
	},
	[]string{"tier", "status"}, // tier="free"|"premium", status="success"|"error"
)

var generationLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "music_generation_latency_ms",
		Help:    "Music generation call latency distribution in milliseconds.",
		Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
	},
	[]string{"provider", "success"},
)

var entitlementBlocks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "entitlement_blocks_total",
		Help: "Generation attempts blocked before any collaborator call.",
	},
	[]string{"state"}, // e.g. free_tier_exhausted, premium_needs_renewal
)

var upgradePrompts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "upgrade_prompts_total",
		Help: "Times a blocked user was routed to the upgrade prompt.",
	},
)

func IncGeneration(tier, status string) {
	generationsTotal.WithLabelValues(norm(tier), norm(status)).Inc()
}

func ObserveGenerationLatency(provider string, latencyMs int, success bool) {
	generationLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncEntitlementBlock(state string) {
	entitlementBlocks.WithLabelValues(norm(state)).Inc()
	upgradePrompts.Inc()
}
