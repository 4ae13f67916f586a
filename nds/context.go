// Package nds implements the multi-layer decision chain that turns one
// tick's indicator bundle into an accept/reject verdict with confidence
// and allowed trade styles.
//
// The chain is stateless per tick except for the adaptive confirmation
// memory held by Core.
package nds

import "math"

// Regime labels the chain understands.
const (
	RegimeTrend   = "TREND"
	RegimeRange   = "RANGE"
	RegimeNeutral = "NEUTRAL"
	RegimeChop    = "CHOP"
	RegimeWarmup  = "WARMUP"
	RegimeUnknown = "UNKNOWN"
)

// Trend directions.
const (
	DirUp   = "UP"
	DirDown = "DOWN"
)

// Trade styles a verdict can allow.
const (
	StyleNoTrade    = "NO_TRADE"
	StyleLongTrend  = "LONG_TREND"
	StyleLongMean   = "LONG_MEAN"
	StyleTrendLong  = "TREND_LONG"
	StyleTrendShort = "TREND_SHORT"
)

// Context is the per-tick indicator bundle every stage evaluates over.
// One typed struct replaces the assorted historical call signatures.
type Context struct {
	VWAPDev        float64
	VolWeight      float64
	BarRange       float64
	AvgRange       float64
	ATR            float64
	Stress         float64
	Regime         string
	VolatilityNorm float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
