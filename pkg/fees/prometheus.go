package fees

import "github.com/prometheus/client_golang/prometheus"

// Metrics for monitoring service.
var (
	// feeCalculations prometheus metric.
	feeCalculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of fee calculations by kind",
			Name:      "fee_calculations_total",
			Namespace: "ledger",
		},
		[]string{"kind"},
	)
	// defaultPriceFallbacks prometheus metric.
	defaultPriceFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of times default usage prices were used",
			Name:      "default_price_fallbacks_total",
			Namespace: "ledger",
		},
	)
	// congestionMultiplier prometheus metric.
	congestionMultiplier = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current congestion fee multiplier",
			Name:      "congestion_multiplier",
			Namespace: "ledger",
		},
	)
)

func init() {
	prometheus.MustRegister(
		feeCalculations,
		defaultPriceFallbacks,
		congestionMultiplier,
	)
}

func countCalculation(kind string) {
	feeCalculations.WithLabelValues(kind).Inc()
}

func countDefaultPrices() {
	defaultPriceFallbacks.Inc()
}

func updateMultiplierMetric(m int64) {
	congestionMultiplier.Set(float64(m))
}
