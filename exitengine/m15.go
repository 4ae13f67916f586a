package exitengine

import "math"

// M15Detector raises exit warnings from high-timeframe structure decay.
// It never executes anything.
type M15Detector struct {
	MinConfidence      float64
	WeakeningSlopeDrop float64
	ReversalSlopeFlip  float64
	MaxVWAPDev         float64
}

// NewM15Detector returns a detector with the standard thresholds.
func NewM15Detector(minConfidence float64) *M15Detector {
	return &M15Detector{
		MinConfidence:      minConfidence,
		WeakeningSlopeDrop: 0.35,
		ReversalSlopeFlip:  0.0,
		MaxVWAPDev:         0.0015,
	}
}

// Evaluate inspects the M15 context for a position on the given side.
func (d *M15Detector) Evaluate(structure StructureContext, vwap VWAPContext, fractal FractalContext, side string) Warning {
	slopeDrop := math.Abs(structure.SlopePrev - structure.SlopeNorm)

	weakening := slopeDrop > d.WeakeningSlopeDrop &&
		structure.Expansion < 1.0 &&
		fractal.Stability < 0.7

	reversal := false
	switch side {
	case SideLong:
		reversal = structure.SlopeNorm < d.ReversalSlopeFlip
	case SideShort:
		reversal = structure.SlopeNorm > -d.ReversalSlopeFlip
	}

	distribution := structure.Expansion < 1.0 &&
		math.Abs(vwap.Deviation) < d.MaxVWAPDev &&
		(structure.Regime == "TREND" || structure.Regime == "TREND_WEAK")

	confidence := 0.0
	if weakening {
		confidence += 0.4
	}
	if reversal {
		confidence += 0.4
	}
	if distribution {
		confidence += 0.2
	}
	confidence = math.Min(confidence, 1.0)

	if confidence < d.MinConfidence {
		return Warning{
			Active:     false,
			SignalType: SignalNone,
			Confidence: confidence,
			Reason:     "M15: trend stable",
		}
	}

	switch {
	case reversal:
		return Warning{Active: true, SignalType: SignalReversal, Confidence: confidence,
			Reason: "M15: trend reversal detected"}
	case distribution:
		return Warning{Active: true, SignalType: SignalDistribution, Confidence: confidence,
			Reason: "M15: distribution / absorption detected"}
	default:
		return Warning{Active: true, SignalType: SignalWeakening, Confidence: confidence,
			Reason: "M15: trend weakening detected"}
	}
}
