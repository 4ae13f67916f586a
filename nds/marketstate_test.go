package nds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarketStateWarmupOnMissingRanges(t *testing.T) {
	t.Parallel()

	e := NewMarketStateEngine()

	for _, ctx := range []Context{
		{AvgRange: 0, BarRange: 1},
		{AvgRange: 1, BarRange: 0},
	} {
		st := e.Evaluate(ctx)
		assert.Equal(t, StateWarmup, st.State)
		assert.Equal(t, RegimeUnknown, st.Structure)
		assert.Equal(t, PressureNeutral, st.Pressure)
	}
}

func TestMarketStateLabels(t *testing.T) {
	t.Parallel()

	e := NewMarketStateEngine()

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"range compression", Context{Regime: RegimeRange, BarRange: 0.5, AvgRange: 1.0}, StateRangeCompression},
		{"range expansion", Context{Regime: RegimeRange, BarRange: 1.5, AvgRange: 1.0}, StateRangeExpansion},
		{"trend active", Context{Regime: RegimeTrend, BarRange: 1.0, AvgRange: 1.0}, StateTrendActive},
		{"unstable", Context{Regime: RegimeNeutral, BarRange: 1.0, AvgRange: 1.0}, StateUnstable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.Evaluate(tt.ctx).State)
		})
	}
}

func TestMarketStatePressureLabel(t *testing.T) {
	t.Parallel()

	e := NewMarketStateEngine()

	base := Context{Regime: RegimeTrend, BarRange: 1.0, AvgRange: 1.0}

	base.VWAPDev = 1.6
	assert.Equal(t, PressureBuy, e.Evaluate(base).Pressure)

	base.VWAPDev = -1.6
	assert.Equal(t, PressureSell, e.Evaluate(base).Pressure)

	base.VWAPDev = 0.4
	assert.Equal(t, PressureNeutral, e.Evaluate(base).Pressure)
}

func TestMarketStateCompressionClamped(t *testing.T) {
	t.Parallel()

	e := NewMarketStateEngine()
	st := e.Evaluate(Context{Regime: RegimeRange, BarRange: 0.1, AvgRange: 1.0})
	assert.InDelta(t, 2.5, st.Compression, 1e-9)
}

func TestPressureBounded(t *testing.T) {
	t.Parallel()

	p := NewPressureEngine()
	out := p.Evaluate(Context{VWAPDev: 5.0, VolWeight: 3.0, Stress: 0.9}, MarketState{State: StateTrendActive, Stability: 0.4})
	assert.InDelta(t, 1.0, out.Value, 1e-12)
	assert.Equal(t, StateTrendActive, out.State)
	assert.InDelta(t, 0.4, out.Confidence, 1e-12)
}

func TestCapacityPenaltiesAndClamp(t *testing.T) {
	t.Parallel()

	c := NewCapacityEngine()

	// benign trend tick keeps most capacity
	out := c.Evaluate(Context{Regime: RegimeTrend, Stress: 0.1},
		MarketState{State: StateTrendActive}, Pressure{Value: 0.1})
	assert.InDelta(t, 0.81, out.Value, 1e-9)

	// compression + heavy pressure + stress + choppy regime hits the floor
	out = c.Evaluate(Context{Regime: RegimeChop, Stress: 0.95},
		MarketState{State: StateRangeCompression}, Pressure{Value: 0.95})
	assert.InDelta(t, 0.05, out.Value, 0.01)
}

func TestGeometryStabilityTags(t *testing.T) {
	t.Parallel()

	g := NewGeometryEngine()

	stable := g.Evaluate(Context{BarRange: 0.5, AvgRange: 1.0, ATR: 1.0, VWAPDev: 0.1})
	assert.Equal(t, GeomStable, stable.Stability)

	expanding := g.Evaluate(Context{BarRange: 1.5, AvgRange: 1.0, ATR: 1.0, VWAPDev: 0.1})
	assert.Equal(t, GeomExpanding, expanding.Stability)

	transition := g.Evaluate(Context{BarRange: 1.0, AvgRange: 1.0, ATR: 1.0, VWAPDev: 0.1})
	assert.Equal(t, GeomTransition, transition.Stability)
}

func TestGeometryTrendDirection(t *testing.T) {
	t.Parallel()

	g := NewGeometryEngine()

	up := g.Evaluate(Context{BarRange: 1.0, AvgRange: 1.0, ATR: 1.0, VWAPDev: 0.01})
	assert.Equal(t, DirUp, up.TrendDirection)

	down := g.Evaluate(Context{BarRange: 1.0, AvgRange: 1.0, ATR: 1.0, VWAPDev: -0.01})
	assert.Equal(t, DirDown, down.TrendDirection)

	flat := g.Evaluate(Context{BarRange: 1.0, AvgRange: 1.0, ATR: 1.0, VWAPDev: 0})
	assert.Empty(t, flat.TrendDirection)
}
