package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Muxer.
type Metrics struct {
	Messages         *prometheus.CounterVec
	UnchangedBatches *prometheus.CounterVec
	EffectsScheduled prometheus.Counter
	EffectsCompleted prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediacore",
			Subsystem: "runtime",
			Name:      "messages_dispatched_total",
			Help:      "Messages dispatched to containers, by kind and name.",
		}, []string{"kind", "name"}),
		UnchangedBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediacore",
			Subsystem: "runtime",
			Name:      "unchanged_batches_total",
			Help:      "Effects batches that reported no state change, by container.",
		}, []string{"container"}),
		EffectsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediacore",
			Subsystem: "runtime",
			Name:      "effects_scheduled_total",
			Help:      "Effects handed to the environment executor.",
		}),
		EffectsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediacore",
			Subsystem: "runtime",
			Name:      "effects_completed_total",
			Help:      "Effects that returned their message.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Messages, m.UnchangedBatches, m.EffectsScheduled, m.EffectsCompleted)
	}
	return m
}
