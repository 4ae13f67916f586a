package nds

// Pressure is a bounded [0,1] measure of directional order-flow pressure.
type Pressure struct {
	Value      float64
	State      string // market state label carried through for capacity
	Confidence float64
}

// PressureEngine combines VWAP deviation, volume weight and stress into
// one bounded pressure value.
type PressureEngine struct{}

func NewPressureEngine() *PressureEngine { return &PressureEngine{} }

// Evaluate computes pressure for one tick given the market state.
func (p *PressureEngine) Evaluate(ctx Context, market MarketState) Pressure {
	v := abs(ctx.VWAPDev)
	v *= 1.0 + ctx.VolWeight
	v *= 1.0 + ctx.Stress

	return Pressure{
		Value:      clamp(v, 0, 1),
		State:      market.State,
		Confidence: market.Stability,
	}
}
