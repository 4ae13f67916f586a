package indicators

import "math"

// Regime labels produced by the detector.
const (
	RegimeTrend   = "TREND"
	RegimeRange   = "RANGE"
	RegimeNeutral = "NEUTRAL"
	RegimeWarmup  = "WARMUP"
)

// RegimeDetector classifies the market from the VWAP feature set.
type RegimeDetector struct {
	TrendThreshold float64
	RangeThreshold float64
}

// NewRegimeDetector returns a detector with the canonical thresholds.
func NewRegimeDetector() *RegimeDetector {
	return &RegimeDetector{
		TrendThreshold: 2.5,
		RangeThreshold: 1.0,
	}
}

// Detect returns TREND, RANGE, NEUTRAL or WARMUP. An unusable average
// range always means WARMUP.
func (d *RegimeDetector) Detect(snap VWAPSnapshot) string {
	if snap.AvgRange <= 0 || math.IsNaN(snap.AvgRange) {
		return RegimeWarmup
	}

	absDev := math.Abs(snap.VWAPDev)
	if absDev > d.TrendThreshold && snap.BarRange > snap.AvgRange {
		return RegimeTrend
	}
	if absDev < d.RangeThreshold {
		return RegimeRange
	}
	return RegimeNeutral
}
