package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// consensusTime prometheus metric.
	consensusTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Consensus time of the last handled transaction",
			Name:      "consensus_time_seconds",
			Namespace: "ledger",
		},
	)
	// entitySequence prometheus metric.
	entitySequence = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number the next created entity gets",
			Name:      "entity_sequence",
			Namespace: "ledger",
		},
	)
)

func init() {
	prometheus.MustRegister(
		consensusTime,
		entitySequence,
	)
}

func updateConsensusTimeMetric(sec int64) {
	consensusTime.Set(float64(sec))
}

func updateSequenceMetric(seq int64) {
	entitySequence.Set(float64(seq))
}
