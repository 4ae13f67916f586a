package nds

// Capacity measures the market's risk absorption capacity as a float in
// [0.05, 1.0]. Lower means thinner.
type Capacity struct {
	Value  float64
	State  string
	Regime string
}

// CapacityEngine multiplies a 1.0 baseline down for risky market states,
// order-flow pressure, stress and choppy regimes.
type CapacityEngine struct{}

func NewCapacityEngine() *CapacityEngine { return &CapacityEngine{} }

// Evaluate computes capacity for one tick.
func (c *CapacityEngine) Evaluate(ctx Context, market MarketState, pressure Pressure) Capacity {
	capv := 1.0

	if market.State == StateRangeCompression || market.State == StateBreakoutRisk {
		capv *= 0.7
	}

	capv *= maxf(0.2, 1.0-pressure.Value)
	capv *= maxf(0.1, 1.0-ctx.Stress)

	if ctx.Regime == RegimeRange || ctx.Regime == RegimeChop {
		capv *= 0.8
	}

	return Capacity{
		Value:  clamp(capv, 0.05, 1.0),
		State:  market.State,
		Regime: ctx.Regime,
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
