package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guardbot"

var (
	registerOnce sync.Once

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_decisions_total",
			Help:      "Moderation decisions by action and reason",
		},
		[]string{"action", "reason"},
	)

	actionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_failures_total",
			Help:      "Outbound platform calls that failed and were skipped",
		},
		[]string{"action"},
	)

	joinsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_joins_total",
			Help:      "Members that joined a moderated chat",
		},
	)

	stateSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "moderation_state_entries",
			Help:      "Entries held in the in-memory moderation state",
		},
		[]string{"kind"},
	)

	updateProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_processing_duration_seconds",
			Help:      "Time spent processing a single update",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

// RegisterMetrics adds the collectors to the default registry. Safe to call
// more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decisionsTotal, actionFailuresTotal, joinsTotal, stateSize, updateProcessingDuration)
	})
}

func RecordDecision(action, reason string) {
	decisionsTotal.WithLabelValues(action, reason).Inc()
}

func RecordActionFailure(action string) {
	actionFailuresTotal.WithLabelValues(action).Inc()
}

func RecordJoin() {
	joinsTotal.Inc()
}

func SetStateSize(members, floodLogs int) {
	stateSize.WithLabelValues("members").Set(float64(members))
	stateSize.WithLabelValues("flood_logs").Set(float64(floodLogs))
}

// StartUpdateProcessing returns a function that observes the elapsed time
// under the given status label.
func StartUpdateProcessing() func(status string) {
	start := time.Now()
	return func(status string) {
		updateProcessingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}
