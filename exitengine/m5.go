package exitengine

// M5Gate confirms an M15 warning against mid-timeframe structure,
// momentum and VWAP context, escalating to HOLD / PARTIAL / FULL.
type M5Gate struct {
	MinConfirmConfidence    float64
	StrongMomentumThreshold float64
	VWAPFlipThreshold       float64
}

// NewM5Gate returns a gate with the standard thresholds.
func NewM5Gate(minConfirmConfidence float64) *M5Gate {
	return &M5Gate{
		MinConfirmConfidence:    minConfirmConfidence,
		StrongMomentumThreshold: -0.25,
		VWAPFlipThreshold:       0.0,
	}
}

// Confirm decides the exit severity for the warned position.
func (g *M5Gate) Confirm(warning Warning, structure StructureContext, vwap VWAPContext, momentum MomentumContext, side string) Confirmation {
	if !warning.Active {
		return Confirmation{Confirmed: false, Severity: SeverityHold, Reason: "M5: no exit warning"}
	}
	if warning.Confidence < g.MinConfirmConfidence {
		return Confirmation{Confirmed: false, Severity: SeverityHold, Reason: "M5: warning confidence too low"}
	}

	momentumAgainst := momentum.MomentumNorm < g.StrongMomentumThreshold
	vwapFlip := vwap.Slope < g.VWAPFlipThreshold
	if side == SideShort {
		momentumAgainst = momentum.MomentumNorm > -g.StrongMomentumThreshold
		vwapFlip = vwap.Slope > -g.VWAPFlipThreshold
	}

	structureBreak := structure.Regime == "BREAK" ||
		structure.Regime == "RANGE" ||
		structure.Regime == "DISTRIBUTION"

	if warning.SignalType == SignalReversal && (momentumAgainst || structureBreak) {
		return Confirmation{Confirmed: true, Severity: SeverityFull,
			Reason: "M5: reversal confirmed by momentum/structure"}
	}

	if momentumAgainst && vwapFlip {
		return Confirmation{Confirmed: true, Severity: SeverityFull,
			Reason: "M5: momentum + VWAP flip against position"}
	}

	if warning.SignalType == SignalWeakening || warning.SignalType == SignalDistribution {
		return Confirmation{Confirmed: true, Severity: SeverityPartial,
			Reason: "M5: weakening / distribution confirmed"}
	}

	return Confirmation{Confirmed: false, Severity: SeverityHold,
		Reason: "M5: conditions insufficient for exit"}
}
