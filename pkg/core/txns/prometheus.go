package txns

import "github.com/prometheus/client_golang/prometheus"

// Metrics for monitoring service.
var (
	// processedTransactions prometheus metric.
	processedTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of handled transactions by status",
			Name:      "processed_transactions_total",
			Namespace: "ledger",
		},
		[]string{"status"},
	)
	// ledgerCommits prometheus metric.
	ledgerCommits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of committed ledger transactions",
			Name:      "ledger_commits_total",
			Namespace: "ledger",
		},
	)
	// ledgerRollbacks prometheus metric.
	ledgerRollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of rolled back ledger transactions",
			Name:      "ledger_rollbacks_total",
			Namespace: "ledger",
		},
	)
	// collectedFees prometheus metric.
	collectedFees = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Total fees charged in tinybars",
			Name:      "collected_fees_tinybars_total",
			Namespace: "ledger",
		},
	)
)

func init() {
	prometheus.MustRegister(
		processedTransactions,
		ledgerCommits,
		ledgerRollbacks,
		collectedFees,
	)
}

func countProcessed(status string) {
	processedTransactions.WithLabelValues(status).Inc()
}

func countCommit() {
	ledgerCommits.Inc()
}

func countRollback() {
	ledgerRollbacks.Inc()
}

func addFees(total int64) {
	collectedFees.Add(float64(total))
}
