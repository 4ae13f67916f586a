// Package engine drives the per-tick decision pipeline: indicators,
// kill-switch checks, the decision chain or exit cascade, risk and
// finally the execution gate.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkrein/tradegate/config"
	"github.com/mkrein/tradegate/execution"
	"github.com/mkrein/tradegate/exitengine"
	"github.com/mkrein/tradegate/feed"
	"github.com/mkrein/tradegate/indicators"
	"github.com/mkrein/tradegate/journal"
	"github.com/mkrein/tradegate/market"
	"github.com/mkrein/tradegate/monitor"
	"github.com/mkrein/tradegate/nds"
	"github.com/mkrein/tradegate/risk"
	"github.com/mkrein/tradegate/telemetry"
)

// minBars is the data-sufficiency floor: with fewer candles visible the
// tick is skipped outright.
const minBars = 50

// Tick outcomes.
const (
	ActionSkip          = "SKIP"
	ActionHold          = "HOLD"
	ActionOrderSent     = "ORDER_SENT"
	ActionOrderRejected = "ORDER_REJECTED"
	ActionExitPartial   = "EXIT_PARTIAL"
	ActionExitFull      = "EXIT_FULL"
)

// Skip reasons.
const (
	SkipKillSwitch       = "kill_switch"
	SkipInsufficientData = "insufficient_data"
	SkipFeedError        = "feed_error"
)

// TickResult reports what one pipeline iteration did.
type TickResult struct {
	Action string
	Reason string
	Regime string
	Stress float64
}

// Position is the single open position the orchestrator tracks.
type Position struct {
	Side       string // exitengine.SideLong / SideShort
	Size       float64
	EntryPrice float64
	OpenedAt   time.Time
}

// Orchestrator wires the whole pipeline for one symbol. It is not
// safe for concurrent use; run one orchestrator per symbol worker.
type Orchestrator struct {
	cfg  config.Config
	feed feed.MarketDataFeed
	gate *execution.Gate
	kill *monitor.KillSwitch
	jrnl journal.Journal
	log  *zap.Logger

	bundle      *indicators.Bundle
	core        *nds.Core
	geometry    *nds.GeometryEngine
	marketState *nds.MarketStateEngine
	m15         *exitengine.M15Detector
	m5          *exitengine.M5Gate
	m1          *exitengine.M1Executor
	budget      *risk.BudgetMapper
	stops       *risk.StopEngine
	sizer       *risk.PositionSizer

	armed       bool
	lastBarTime time.Time
	prevSlope   float64
	prevVWAPDev float64
	wasTradable bool
	position    *Position
}

// New assembles an orchestrator from the configuration and its
// collaborators. The kill switch must be the same instance the gate
// was built with.
func New(cfg config.Config, f feed.MarketDataFeed, gate *execution.Gate, kill *monitor.KillSwitch, jrnl journal.Journal, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if jrnl == nil {
		jrnl = journal.Nop{}
	}

	budget := risk.NewBudgetMapper(cfg.Risk.MinRiskUSD, cfg.Risk.MaxRiskPct)
	budget.ForceTrade = cfg.Risk.ForceTrade
	budget.ForceMinRiskUSD = cfg.Risk.ForceMinRiskUSD

	return &Orchestrator{
		cfg:  cfg,
		feed: f,
		gate: gate,
		kill: kill,
		jrnl: jrnl,
		log:  log,

		bundle:      indicators.NewBundle(minBars),
		core:        nds.NewCore(nds.OverrideConfig{
			Enabled:           cfg.NDS.OverrideEnabled,
			MinTrendExpansion: cfg.NDS.MinTrendExpansion,
			MinVWAPDev:        cfg.NDS.MinVWAPDev,
			MaxTradeStress:    cfg.NDS.MaxTradeStress,
		}),
		geometry:    nds.NewGeometryEngine(),
		marketState: nds.NewMarketStateEngine(),
		m15:         exitengine.NewM15Detector(cfg.Exit.MinWarnConfidence),
		m5:          exitengine.NewM5Gate(cfg.Exit.MinConfirmConfidence),
		m1:          exitengine.NewM1Executor(cfg.Exit.PartialCloseRatio, cfg.Exit.PnLProtectThreshold),
		budget:      budget,
		stops:       risk.NewStopEngine(cfg.Stop.Alpha, cfg.Stop.MinSamples),
		sizer:       risk.NewPositionSizer(f.GetPointValue(), cfg.Risk.MinSize),
		wasTradable: true,
	}
}

// Position returns the currently tracked open position, nil when flat.
func (o *Orchestrator) Position() *Position {
	return o.position
}

// Run iterates the pipeline on the given interval until ctx ends.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := o.RunOnce(ctx)
			o.log.Debug("tick",
				zap.String("action", res.Action),
				zap.String("reason", res.Reason),
				zap.String("regime", res.Regime),
				zap.Float64("stress", res.Stress),
			)
		}
	}
}

// RunOnce executes one deterministic pipeline iteration.
func (o *Orchestrator) RunOnce(ctx context.Context) TickResult {
	if !o.armed {
		o.kill.Arm(o.feed.GetEquity())
		o.armed = true
	}

	if skipped, res := o.checkTradable(); skipped {
		return res
	}

	window, err := o.feed.GetData()
	if err != nil {
		telemetry.TicksSkipped.WithLabelValues(SkipFeedError).Inc()
		o.log.Warn("market data unavailable", zap.Error(err))
		return TickResult{Action: ActionSkip, Reason: SkipFeedError}
	}
	if window.Len() < minBars {
		telemetry.TicksSkipped.WithLabelValues(SkipInsufficientData).Inc()
		return TickResult{Action: ActionSkip, Reason: SkipInsufficientData}
	}

	o.ingest(window)
	snap := o.bundle.Snapshot()
	telemetry.StressScore.Set(snap.Stress)

	o.kill.CheckStress(snap.Stress)
	o.kill.CheckEquity(o.feed.GetEquity())
	if skipped, res := o.checkTradable(); skipped {
		res.Regime = snap.Regime
		res.Stress = snap.Stress
		return res
	}

	ndsCtx := nds.Context{
		VWAPDev:        snap.VWAPDev,
		VolWeight:      snap.VolWeight,
		BarRange:       snap.BarRange,
		AvgRange:       snap.AvgRange,
		ATR:            snap.ATR,
		Stress:         snap.Stress,
		Regime:         snap.Regime,
		VolatilityNorm: snap.VolatilityNorm,
	}

	var res TickResult
	if o.position != nil {
		res = o.evaluateExit(ctx, window, snap, ndsCtx)
	} else {
		res = o.evaluateEntry(ctx, window, snap, ndsCtx)
	}

	telemetry.TicksProcessed.Inc()
	res.Regime = snap.Regime
	res.Stress = snap.Stress
	return res
}

// checkTradable folds the kill-switch state into a skip result and
// counts the trip transition exactly once.
func (o *Orchestrator) checkTradable() (bool, TickResult) {
	if o.kill.CanTrade() {
		o.wasTradable = true
		return false, TickResult{}
	}

	if o.wasTradable {
		o.wasTradable = false
		telemetry.KillSwitchTrips.Inc()
		o.log.Error("kill switch active", zap.String("reason", o.kill.Status().Reason))
	}
	telemetry.TicksSkipped.WithLabelValues(SkipKillSwitch).Inc()
	return true, TickResult{Action: ActionSkip, Reason: SkipKillSwitch}
}

// ingest feeds candles the bundle has not seen yet, by bar time.
func (o *Orchestrator) ingest(window market.Window) {
	for _, c := range window {
		if !c.Time.After(o.lastBarTime) {
			continue
		}
		o.bundle.Update(c)
		o.lastBarTime = c.Time
	}
}

func (o *Orchestrator) evaluateEntry(ctx context.Context, window market.Window, snap indicators.Snapshot, ndsCtx nds.Context) TickResult {
	verdict := o.core.Evaluate(ndsCtx)
	price := window.Last().Close

	o.journalDecision(window.Last().Time, snap, verdict.Decision)

	if !verdict.Decision.Accept {
		return TickResult{Action: ActionHold, Reason: verdict.Decision.Explanation}
	}

	equity := o.feed.GetEquity()
	budget := o.budget.Compute(equity, snap.Stress, snap.Regime, snap.VWAPDev)
	if budget.RiskAmount <= 0 {
		return TickResult{Action: ActionHold, Reason: "zero risk budget"}
	}

	direction, side := entryDirection(verdict.Decision.AllowedStyles)

	stop, stopReason := o.stops.Compute(risk.StopInput{
		Direction:  direction,
		EntryPrice: price,
		ATR:        snap.ATR,
		Stress:     snap.Stress,
		Slope:      snap.VWAPDev,
		Returns:    snap.Returns,
	})

	sizing := o.sizer.Compute(budget.RiskAmount, price, stop, snap.Regime, snap.Stress, snap.VWAPDev)
	if sizing.Size <= 0 {
		return TickResult{Action: ActionHold, Reason: "size below venue minimum"}
	}

	intent := execution.Intent{
		Symbol:     o.feed.Symbol(),
		Side:       side,
		Size:       sizing.Size,
		LimitPrice: price,
		StopPrice:  stop,
		Comment:    fmt.Sprintf("%s conf=%.2f stop=%s", strings.Join(verdict.Decision.AllowedStyles, ","), verdict.Decision.Confidence, stopReason),
	}

	result := o.gate.Send(ctx, intent)
	o.journalLastOrder()

	if !result.Success {
		o.log.Warn("entry rejected",
			zap.String("symbol", intent.Symbol),
			zap.String("reason", result.Reason),
		)
		return TickResult{Action: ActionOrderRejected, Reason: result.Reason}
	}

	posSide := exitengine.SideLong
	if direction == risk.Short {
		posSide = exitengine.SideShort
	}
	o.position = &Position{
		Side:       posSide,
		Size:       sizing.Size,
		EntryPrice: result.FillPrice,
		OpenedAt:   window.Last().Time,
	}

	o.log.Info("position opened",
		zap.String("symbol", intent.Symbol),
		zap.String("side", posSide),
		zap.Float64("size", sizing.Size),
		zap.Float64("entry", result.FillPrice),
		zap.Float64("stop", stop),
		zap.String("stop_reason", stopReason),
		zap.Float64("risk", sizing.EffectiveRisk),
	)
	return TickResult{Action: ActionOrderSent, Reason: intent.Comment}
}

func (o *Orchestrator) evaluateExit(ctx context.Context, window market.Window, snap indicators.Snapshot, ndsCtx nds.Context) TickResult {
	price := window.Last().Close
	geom := o.geometry.Evaluate(ndsCtx)
	state := o.marketState.Evaluate(ndsCtx)

	structure := exitengine.StructureContext{
		SlopeNorm: geom.SlopeNorm,
		SlopePrev: o.prevSlope,
		Expansion: geom.Expansion,
		Regime:    snap.Regime,
	}
	vwap := exitengine.VWAPContext{
		Deviation: snap.VWAPDev,
		Slope:     snap.VWAPDev - o.prevVWAPDev,
	}
	o.prevSlope = geom.SlopeNorm
	o.prevVWAPDev = snap.VWAPDev

	pos := exitengine.PositionContext{
		Side:          o.position.Side,
		UnrealizedPnL: o.unrealizedPnL(price),
	}

	warning := o.m15.Evaluate(structure, vwap, exitengine.FractalContext{Stability: state.Stability}, o.position.Side)
	confirmation := o.m5.Confirm(warning, structure, vwap, exitengine.MomentumContext{MomentumNorm: geom.SlopeNorm}, o.position.Side)
	action := o.m1.Execute(confirmation, pos)

	if !action.Close {
		return TickResult{Action: ActionHold, Reason: action.Reason}
	}

	closeSize := round2(o.position.Size * action.CloseRatio)
	if closeSize <= 0 {
		return TickResult{Action: ActionHold, Reason: "close size rounds to zero"}
	}

	side := execution.SideSell
	if o.position.Side == exitengine.SideShort {
		side = execution.SideBuy
	}

	intent := execution.Intent{
		Symbol:     o.feed.Symbol(),
		Side:       side,
		Size:       closeSize,
		LimitPrice: price,
		Comment:    "exit: " + action.Reason,
	}

	result := o.gate.Send(ctx, intent)
	o.journalLastOrder()

	if !result.Success {
		o.log.Warn("exit rejected",
			zap.String("symbol", intent.Symbol),
			zap.String("reason", result.Reason),
		)
		return TickResult{Action: ActionOrderRejected, Reason: result.Reason}
	}

	full := action.CloseRatio >= 1.0 || closeSize >= o.position.Size
	o.log.Info("position reduced",
		zap.String("symbol", intent.Symbol),
		zap.Float64("closed", closeSize),
		zap.Bool("full", full),
		zap.String("reason", action.Reason),
	)

	if full {
		o.position = nil
		return TickResult{Action: ActionExitFull, Reason: action.Reason}
	}
	o.position.Size = round2(o.position.Size - closeSize)
	return TickResult{Action: ActionExitPartial, Reason: action.Reason}
}

func (o *Orchestrator) unrealizedPnL(price float64) float64 {
	pnl := (price - o.position.EntryPrice) * o.position.Size * o.feed.GetPointValue()
	if o.position.Side == exitengine.SideShort {
		pnl = -pnl
	}
	return pnl
}

func (o *Orchestrator) journalDecision(barTime time.Time, snap indicators.Snapshot, d nds.Decision) {
	entry := journal.DecisionEntry{
		Time:        barTime,
		Symbol:      o.feed.Symbol(),
		Regime:      snap.Regime,
		Stress:      snap.Stress,
		Accept:      d.Accept,
		Confidence:  d.Confidence,
		Styles:      strings.Join(d.AllowedStyles, ","),
		Explanation: d.Explanation,
	}
	if err := o.jrnl.RecordDecision(entry); err != nil {
		o.log.Warn("journal decision failed", zap.Error(err))
	}
}

// journalLastOrder persists the newest gate record after a Send.
func (o *Orchestrator) journalLastOrder() {
	records := o.gate.Registry().All()
	if len(records) == 0 {
		return
	}
	if err := o.jrnl.RecordOrder(records[len(records)-1]); err != nil {
		o.log.Warn("journal order failed", zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// entryDirection maps the allowed styles to a stop direction and order
// side. Short styles sell; everything else is long.
func entryDirection(styles []string) (string, string) {
	for _, s := range styles {
		if s == nds.StyleTrendShort {
			return risk.Short, execution.SideSell
		}
	}
	return risk.Long, execution.SideBuy
}
