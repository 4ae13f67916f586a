// Package telemetry exposes the pipeline's Prometheus metrics and the
// HTTP endpoint that serves them.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tradegate_orders_sent_total",
		Help: "Order intents admitted by the gate and sent to the adapter",
	})

	OrdersFilled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tradegate_orders_filled_total",
		Help: "Orders filled by the adapter",
	})

	OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tradegate_orders_rejected_total",
		Help: "Orders rejected, by gate check or adapter reason",
	}, []string{"reason"})

	RejectRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tradegate_reject_ratio_window",
		Help: "Windowed execution reject ratio",
	})

	ExecLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradegate_execution_latency_seconds",
		Help:    "Adapter round-trip latency per order",
		Buckets: prometheus.DefBuckets,
	})

	KillSwitchTrips = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tradegate_kill_switch_trips_total",
		Help: "Times the kill switch tripped",
	})

	TicksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tradegate_ticks_processed_total",
		Help: "Market ticks fully processed by the orchestrator",
	})

	TicksSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tradegate_ticks_skipped_total",
		Help: "Ticks skipped before execution, by reason",
	}, []string{"reason"})

	StressScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tradegate_stress_score",
		Help: "Latest market stress score",
	})
)

// Register installs every pipeline metric on the registry.
func Register(reg *prometheus.Registry) {
	reg.MustRegister(
		OrdersSent,
		OrdersFilled,
		OrdersRejected,
		RejectRatio,
		ExecLatency,
		KillSwitchTrips,
		TicksProcessed,
		TicksSkipped,
		StressScore,
	)
}
