package nds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overrideConfig() OverrideConfig {
	return OverrideConfig{
		Enabled:           true,
		MinTrendExpansion: 0.7,
		MinVWAPDev:        0.0025,
		MaxTradeStress:    0.35,
	}
}

// trendRejectCtx is a TREND tick the base chain rejects (excess
// volatility penalty pushes judgment to 0.5) but that passes the
// adaptive hard gate.
func trendRejectCtx(dev, volNorm float64) Context {
	return Context{
		Regime:         RegimeTrend,
		VWAPDev:        dev,
		BarRange:       1.9,
		AvgRange:       1.0,
		ATR:            1.0,
		Stress:         0.2,
		VolatilityNorm: volNorm,
	}
}

func TestOverrideFlipsOnFirstBarAtLowVolatility(t *testing.T) {
	t.Parallel()

	core := NewCore(overrideConfig())
	v := core.Evaluate(trendRejectCtx(0.003, 0.0))

	require.True(t, v.Decision.Accept)
	assert.Equal(t, []string{StyleTrendLong}, v.Decision.AllowedStyles)
	// min(0.70 + 1.9*0.10, 0.95)
	assert.InDelta(t, 0.89, v.Decision.Confidence, 1e-9)
	assert.Equal(t, "adaptive confirmation 1/1", v.Decision.Explanation)
}

func TestOverrideRequiresThreeBarsAtHighVolatility(t *testing.T) {
	t.Parallel()

	core := NewCore(overrideConfig())

	for i := 1; i <= 2; i++ {
		v := core.Evaluate(trendRejectCtx(0.003, 1.0))
		assert.False(t, v.Decision.Accept, "bar %d", i)
		assert.Equal(t, fmt.Sprintf("adaptive waiting confirmation %d/3", i), v.Decision.Explanation)
	}

	v := core.Evaluate(trendRejectCtx(0.003, 1.0))
	require.True(t, v.Decision.Accept)
	assert.Equal(t, "adaptive confirmation 3/3", v.Decision.Explanation)
}

func TestOverrideShortDirection(t *testing.T) {
	t.Parallel()

	core := NewCore(overrideConfig())
	v := core.Evaluate(trendRejectCtx(-0.003, 0.0))

	require.True(t, v.Decision.Accept)
	assert.Equal(t, []string{StyleTrendShort}, v.Decision.AllowedStyles)
}

func TestOverrideGateFailureClearsMemory(t *testing.T) {
	t.Parallel()

	core := NewCore(overrideConfig())

	// two confirming bars toward needed=3
	core.Evaluate(trendRejectCtx(0.003, 1.0))
	core.Evaluate(trendRejectCtx(0.003, 1.0))

	// stress above the gate maximum wipes the memory
	failing := trendRejectCtx(0.003, 1.0)
	failing.Stress = 0.5
	v := core.Evaluate(failing)
	assert.False(t, v.Decision.Accept)
	assert.Equal(t, "adaptive hard-gate rejection", v.Decision.Explanation)

	// confirmation starts over
	v = core.Evaluate(trendRejectCtx(0.003, 1.0))
	assert.False(t, v.Decision.Accept)
	assert.Equal(t, "adaptive waiting confirmation 1/3", v.Decision.Explanation)
}

func TestOverrideDisabledLeavesBaseDecision(t *testing.T) {
	t.Parallel()

	cfg := overrideConfig()
	cfg.Enabled = false
	core := NewCore(cfg)

	v := core.Evaluate(trendRejectCtx(0.003, 0.0))
	assert.False(t, v.Decision.Accept)
}

func TestOverrideNeverTouchesAcceptedDecision(t *testing.T) {
	t.Parallel()

	core := NewCore(overrideConfig())

	// base chain accepts this tick outright
	v := core.Evaluate(Context{
		Regime:   RegimeTrend,
		VWAPDev:  0.003,
		BarRange: 1.0,
		AvgRange: 1.0,
		ATR:      1.0,
		Stress:   0.2,
	})
	require.True(t, v.Decision.Accept)
	assert.Equal(t, []string{StyleLongTrend}, v.Decision.AllowedStyles)
	assert.Equal(t, "decision accepted", v.Decision.Explanation)
}

func TestConfirmationBarsNeeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vol  float64
		want int
	}{
		{0.0, 1},
		{0.25, 2},
		{0.5, 2},
		{1.0, 3},
		{2.0, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confirmationBarsNeeded(tt.vol), "vol %v", tt.vol)
	}
}

func TestConfirmMemoryRing(t *testing.T) {
	t.Parallel()

	var m confirmMemory
	for i := 0; i < 7; i++ {
		m.push(DirUp)
	}
	assert.Equal(t, confirmCapacity, m.aligned(DirUp))

	m.push(DirDown)
	assert.Equal(t, confirmCapacity-1, m.aligned(DirUp))
	assert.Equal(t, 1, m.aligned(DirDown))

	m.clear()
	assert.Zero(t, m.aligned(DirUp))
}
