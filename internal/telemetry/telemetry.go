package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	// autoswap_ticks_total
	//
	// counter of policy evaluations
	//
	// Has the following labels:
	// * outcome - no_route, below_limit, insufficient_input, approval_failed, swap_failed, swapped, error
	TicksMetricName = "autoswap_ticks_total"

	// autoswap_swaps_total
	//
	// counter of swap transactions
	//
	// Has the following labels:
	// * status - confirmed, reverted, timeout, estimate_failed, insufficient_native, send_failed
	SwapsMetricName = "autoswap_swaps_total"

	// autoswap_approvals_total
	//
	// Has the following labels:
	// * status - skipped, confirmed, failed
	ApprovalsMetricName = "autoswap_approvals_total"

	LastExecutionPriceMetricName = "autoswap_last_execution_price"
	TickDurationMetricName       = "autoswap_tick_duration_seconds"

	TicksCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: TicksMetricName,
			Help: "counter of policy evaluations by outcome",
		},
		[]string{"outcome"},
	)

	SwapsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: SwapsMetricName,
			Help: "counter of swap attempts by status",
		},
		[]string{"status"},
	)

	ApprovalsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ApprovalsMetricName,
			Help: "counter of allowance checks by status",
		},
		[]string{"status"},
	)

	LastExecutionPriceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: LastExecutionPriceMetricName,
			Help: "execution price of the best trade seen on the last tick, output per input",
		},
	)

	TickDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    TickDurationMetricName,
			Help:    "time spent evaluating one tick",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(TicksCounter)
	prometheus.MustRegister(SwapsCounter)
	prometheus.MustRegister(ApprovalsCounter)
	prometheus.MustRegister(LastExecutionPriceGauge)
	prometheus.MustRegister(TickDurationHistogram)
}
