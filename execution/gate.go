package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkrein/tradegate/monitor"
	"github.com/mkrein/tradegate/telemetry"
)

// Gate rejection reasons for intents that never reach the adapter.
const (
	ReasonKillSwitchActive = "KILL_SWITCH_ACTIVE"
	ReasonPausedByFeedback = "EXECUTION_PAUSED_BY_FEEDBACK"
	ReasonDuplicateIntent  = "DUPLICATE_INTENT"
	ReasonInvalidIntent    = "INVALID_INTENT"
)

// GateConfig bundles the gate's tunables.
type GateConfig struct {
	MaxRecords          int
	WindowSec           int
	SoftRejectRatio     float64
	CriticalRejectRatio float64
	MinThrottle         float64
	MinSizeMultiplier   float64
}

// Gate is the admission controller in front of the broker adapter. It
// owns its registry, metrics and feedback controller exclusively; the
// kill switch is shared by reference. Send is serialized so the gate
// can be shared across symbol workers.
type Gate struct {
	mu sync.Mutex

	adapter  Adapter
	kill     *monitor.KillSwitch
	registry *Registry
	metrics  *RollingMetrics
	feedback *FeedbackController
	log      *zap.Logger

	sleep func(time.Duration) // test hook for the throttle delay
}

// NewGate wires a gate around the adapter and shared kill switch.
func NewGate(adapter Adapter, kill *monitor.KillSwitch, cfg GateConfig, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		adapter:  adapter,
		kill:     kill,
		registry: NewRegistry(cfg.MaxRecords),
		metrics:  NewRollingMetrics(kill, cfg.WindowSec),
		feedback: NewFeedbackController(kill, cfg.SoftRejectRatio, cfg.CriticalRejectRatio, cfg.MinThrottle, cfg.MinSizeMultiplier),
		log:      log,
		sleep:    time.Sleep,
	}
}

// Registry exposes the audit log for journaling and inspection.
func (g *Gate) Registry() *Registry { return g.registry }

// Metrics exposes the rolling execution metrics.
func (g *Gate) Metrics() *RollingMetrics { return g.metrics }

// Feedback exposes the adaptive controller.
func (g *Gate) Feedback() *FeedbackController { return g.feedback }

// Send runs the ordered admission checks and, if they pass, executes
// the (size-adjusted) intent through the adapter. Every outcome carries
// a reason; control-state refusals are results, not errors.
func (g *Gate) Send(ctx context.Context, intent Intent) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	// contract errors must never reach the adapter
	if err := intent.Validate(); err != nil {
		telemetry.OrdersRejected.WithLabelValues(ReasonInvalidIntent).Inc()
		return Result{Success: false, Reason: ReasonInvalidIntent + ": " + err.Error()}
	}

	if g.kill != nil && !g.kill.CanTrade() {
		telemetry.OrdersRejected.WithLabelValues(ReasonKillSwitchActive).Inc()
		return Result{Success: false, Reason: ReasonKillSwitchActive}
	}

	if !g.feedback.AllowSend() {
		telemetry.OrdersRejected.WithLabelValues(ReasonPausedByFeedback).Inc()
		return Result{Success: false, Reason: ReasonPausedByFeedback}
	}

	if g.registry.HasSimilar(intent) {
		telemetry.OrdersRejected.WithLabelValues(ReasonDuplicateIntent).Inc()
		return Result{Success: false, Reason: ReasonDuplicateIntent}
	}

	execIntent := intent.WithSize(g.feedback.AdjustSize(intent.Size))

	// back-pressure: degraded throttle slows sends, it never drops them
	if throttle := g.feedback.Throttle(); throttle < 1.0 {
		g.sleep(time.Duration((1.0 - throttle) * 0.5 * float64(time.Second)))
	}

	recordID := g.registry.Create(execIntent)
	g.registry.MarkSent(recordID)
	g.metrics.OnSend()
	telemetry.OrdersSent.Inc()

	start := time.Now()
	result := g.adapter.Execute(ctx, execIntent)
	latencyMs := float64(time.Since(start)) / float64(time.Millisecond)

	if !result.Success {
		reason := result.Reason
		if reason == "" {
			reason = "UNKNOWN"
		}
		g.registry.MarkRejected(recordID, reason)
		g.metrics.OnReject(reason)
		g.feedback.Evaluate(g.metrics)
		telemetry.OrdersRejected.WithLabelValues(reason).Inc()
		telemetry.RejectRatio.Set(g.metrics.RejectRatioWindow())
		g.log.Warn("order rejected",
			zap.String("symbol", execIntent.Symbol),
			zap.String("reason", reason),
		)
		return result
	}

	fillPrice := result.FillPrice
	if fillPrice == 0 {
		fillPrice = execIntent.LimitPrice
	}
	g.registry.MarkFilled(recordID, result.OrderID, fillPrice)
	g.metrics.OnFill(latencyMs)
	g.feedback.Evaluate(g.metrics)
	telemetry.OrdersFilled.Inc()
	telemetry.ExecLatency.Observe(latencyMs / 1000)
	telemetry.RejectRatio.Set(g.metrics.RejectRatioWindow())

	g.log.Info("order filled",
		zap.String("symbol", execIntent.Symbol),
		zap.String("side", execIntent.Side),
		zap.Float64("size", execIntent.Size),
		zap.Float64("fill_price", fillPrice),
		zap.Float64("latency_ms", latencyMs),
	)
	return result
}
