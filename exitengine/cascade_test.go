package exitengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestM15StableTrendStaysQuiet(t *testing.T) {
	t.Parallel()

	d := NewM15Detector(0.55)
	w := d.Evaluate(
		StructureContext{SlopeNorm: 0.5, SlopePrev: 0.55, Expansion: 1.3, Regime: "TREND"},
		VWAPContext{Deviation: 0.003},
		FractalContext{Stability: 0.9},
		SideLong,
	)
	assert.False(t, w.Active)
	assert.Equal(t, SignalNone, w.SignalType)
}

func TestM15ReversalForLong(t *testing.T) {
	t.Parallel()

	d := NewM15Detector(0.55)
	// negative slope on a long: reversal (0.4) + weakening (0.4) = 0.8
	w := d.Evaluate(
		StructureContext{SlopeNorm: -0.2, SlopePrev: 0.3, Expansion: 0.8, Regime: "TREND"},
		VWAPContext{Deviation: 0.005},
		FractalContext{Stability: 0.5},
		SideLong,
	)
	assert.True(t, w.Active)
	assert.Equal(t, SignalReversal, w.SignalType)
	assert.InDelta(t, 0.8, w.Confidence, 1e-9)
}

func TestM15DistributionSignal(t *testing.T) {
	t.Parallel()

	d := NewM15Detector(0.55)
	// reversal (slope < 0 for long) + distribution, no weakening
	w := d.Evaluate(
		StructureContext{SlopeNorm: -0.05, SlopePrev: -0.1, Expansion: 0.9, Regime: "TREND"},
		VWAPContext{Deviation: 0.001},
		FractalContext{Stability: 0.9},
		SideLong,
	)
	assert.True(t, w.Active)
	// reversal takes precedence over distribution in the signal label
	assert.Equal(t, SignalReversal, w.SignalType)
	assert.InDelta(t, 0.6, w.Confidence, 1e-9)
}

func TestM15WeakeningOnlyBelowThreshold(t *testing.T) {
	t.Parallel()

	d := NewM15Detector(0.55)
	// weakening alone scores 0.4, below the default 0.55 minimum
	w := d.Evaluate(
		StructureContext{SlopeNorm: 0.1, SlopePrev: 0.6, Expansion: 0.8, Regime: "RANGE"},
		VWAPContext{Deviation: 0.005},
		FractalContext{Stability: 0.5},
		SideLong,
	)
	assert.False(t, w.Active)
	assert.InDelta(t, 0.4, w.Confidence, 1e-9)
}

func TestM5HoldWithoutWarning(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	c := g.Confirm(Warning{Active: false}, StructureContext{}, VWAPContext{}, MomentumContext{}, SideLong)
	assert.False(t, c.Confirmed)
	assert.Equal(t, SeverityHold, c.Severity)
}

func TestM5ConfidenceGate(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	c := g.Confirm(
		Warning{Active: true, SignalType: SignalReversal, Confidence: 0.55},
		StructureContext{Regime: "BREAK"}, VWAPContext{}, MomentumContext{}, SideLong)
	assert.False(t, c.Confirmed)
	assert.Equal(t, SeverityHold, c.Severity)
}

func TestM5FullOnReversalWithStructureBreak(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	c := g.Confirm(
		Warning{Active: true, SignalType: SignalReversal, Confidence: 0.8},
		StructureContext{Regime: "BREAK"},
		VWAPContext{Slope: 0.1},
		MomentumContext{MomentumNorm: 0.0},
		SideLong)
	assert.True(t, c.Confirmed)
	assert.Equal(t, SeverityFull, c.Severity)
}

func TestM5FullOnMomentumAndVWAPFlip(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	c := g.Confirm(
		Warning{Active: true, SignalType: SignalWeakening, Confidence: 0.8},
		StructureContext{Regime: "TREND"},
		VWAPContext{Slope: -0.1},
		MomentumContext{MomentumNorm: -0.5},
		SideLong)
	assert.True(t, c.Confirmed)
	assert.Equal(t, SeverityFull, c.Severity)
}

func TestM5PartialOnWeakening(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	c := g.Confirm(
		Warning{Active: true, SignalType: SignalWeakening, Confidence: 0.7},
		StructureContext{Regime: "TREND"},
		VWAPContext{Slope: 0.1},
		MomentumContext{MomentumNorm: 0.1},
		SideLong)
	assert.True(t, c.Confirmed)
	assert.Equal(t, SeverityPartial, c.Severity)
}

func TestM5ShortSideDirectionality(t *testing.T) {
	t.Parallel()

	g := NewM5Gate(0.60)
	// for a short, strong positive momentum plus an upward VWAP slope is against the position
	c := g.Confirm(
		Warning{Active: true, SignalType: SignalWeakening, Confidence: 0.8},
		StructureContext{Regime: "TREND"},
		VWAPContext{Slope: 0.1},
		MomentumContext{MomentumNorm: 0.5},
		SideShort)
	assert.Equal(t, SeverityFull, c.Severity)
}

func TestM1HoldAndFull(t *testing.T) {
	t.Parallel()

	e := NewM1Executor(0.33, 0.0)

	a := e.Execute(Confirmation{Confirmed: false, Severity: SeverityHold}, PositionContext{})
	assert.False(t, a.Close)

	a = e.Execute(Confirmation{Confirmed: true, Severity: SeverityFull}, PositionContext{})
	assert.True(t, a.Close)
	assert.InDelta(t, 1.0, a.CloseRatio, 1e-12)
}

func TestM1PartialWithPnLProtection(t *testing.T) {
	t.Parallel()

	e := NewM1Executor(0.33, 0.0)

	a := e.Execute(Confirmation{Confirmed: true, Severity: SeverityPartial},
		PositionContext{UnrealizedPnL: 12.5})
	assert.True(t, a.Close)
	assert.InDelta(t, 0.33, a.CloseRatio, 1e-12)

	a = e.Execute(Confirmation{Confirmed: true, Severity: SeverityPartial},
		PositionContext{UnrealizedPnL: -3.0})
	assert.False(t, a.Close)
	assert.Contains(t, a.Reason, "blocked")
}

func TestM1RatioClamped(t *testing.T) {
	t.Parallel()

	e := NewM1Executor(1.7, 0.0)
	assert.InDelta(t, 1.0, e.PartialCloseRatio, 1e-12)

	e = NewM1Executor(-0.5, 0.0)
	assert.Zero(t, e.PartialCloseRatio)
}
