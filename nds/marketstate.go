package nds

// Market state labels.
const (
	StateRangeCompression = "RANGE_COMPRESSION"
	StateRangeExpansion   = "RANGE_EXPANSION"
	StateTrendActive      = "TREND_ACTIVE"
	StateBreakoutRisk     = "BREAKOUT_RISK"
	StateUnstable         = "UNSTABLE"
	StateWarmup           = "WARMUP"
)

// Pressure labels.
const (
	PressureBuy     = "BUY"
	PressureSell    = "SELL"
	PressureNeutral = "NEUTRAL"
)

// MarketState describes the structural condition of the market for one
// tick. Descriptive only; no trading decisions here.
type MarketState struct {
	State       string
	Structure   string // regime label
	Pressure    string
	Compression float64
	Expansion   float64
	Stability   float64
}

// MarketStateEngine classifies compression/expansion, a coarse pressure
// label and a stability score from the tick context.
type MarketStateEngine struct {
	CompressionCap        float64
	ExpansionCap          float64
	VWAPPressureThreshold float64
}

// NewMarketStateEngine returns an engine with the standard caps.
func NewMarketStateEngine() *MarketStateEngine {
	return &MarketStateEngine{
		CompressionCap:        2.5,
		ExpansionCap:          2.5,
		VWAPPressureThreshold: 1.5,
	}
}

var regimeStabilityFactor = map[string]float64{
	RegimeTrend:   0.9,
	RegimeRange:   1.0,
	RegimeNeutral: 0.8,
}

// Evaluate classifies the tick. Missing range data yields a WARMUP state.
func (e *MarketStateEngine) Evaluate(ctx Context) MarketState {
	if ctx.AvgRange <= 0 || ctx.BarRange <= 0 {
		return MarketState{
			State:     StateWarmup,
			Structure: RegimeUnknown,
			Pressure:  PressureNeutral,
		}
	}

	compression := clamp(ctx.AvgRange/ctx.BarRange, 0, e.CompressionCap)
	expansion := clamp(ctx.BarRange/ctx.AvgRange, 0, e.ExpansionCap)

	pressure := PressureNeutral
	if ctx.VWAPDev > e.VWAPPressureThreshold {
		pressure = PressureBuy
	} else if ctx.VWAPDev < -e.VWAPPressureThreshold {
		pressure = PressureSell
	}

	normDev := clamp(abs(ctx.VWAPDev)/e.VWAPPressureThreshold, 0, 1)
	factor, ok := regimeStabilityFactor[ctx.Regime]
	if !ok {
		factor = 0.7
	}
	stability := clamp((1.0-ctx.Stress)*(1.0-normDev)*factor, 0, 1)

	var state string
	switch {
	case ctx.Regime == RegimeRange && compression > 1.2:
		state = StateRangeCompression
	case ctx.Regime == RegimeRange && expansion > 1.2:
		state = StateRangeExpansion
	case ctx.Regime == RegimeTrend:
		state = StateTrendActive
	default:
		state = StateUnstable
	}

	return MarketState{
		State:       state,
		Structure:   ctx.Regime,
		Pressure:    pressure,
		Compression: round2(compression),
		Expansion:   round2(expansion),
		Stability:   round2(stability),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
