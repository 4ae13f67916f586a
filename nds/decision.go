package nds

// Decision is the final chain output the orchestrator reads. Never
// mutated after creation; the adaptive override produces a fresh copy.
type Decision struct {
	Accept        bool
	AllowedStyles []string
	Confidence    float64
	Explanation   string
}

// DecisionEngine merges the low-level engines with the judgment verdict
// and applies the final veto.
type DecisionEngine struct {
	AcceptThreshold float64

	// Soft modulation thresholds. Capacity below ThinCapacity counts as
	// thin; pressure at or above ExhaustedPressure counts as exhausted.
	ThinCapacity      float64
	ExhaustedPressure float64
}

func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{
		AcceptThreshold:   0.55,
		ThinCapacity:      0.30,
		ExhaustedPressure: 0.85,
	}
}

// Evaluate fuses the stage outputs into a final decision.
func (d *DecisionEngine) Evaluate(market MarketState, structure Geometry, pressure Pressure, capacity Capacity, judgment Judgment) Decision {
	if !judgment.Accept {
		return Decision{
			Accept:        false,
			AllowedStyles: []string{StyleNoTrade},
			Confidence:    0.0,
			Explanation:   "judgment rejected trade",
		}
	}

	confidence := judgment.Confidence

	if structure.Stability == GeomStable {
		confidence += 0.05
	}
	if pressure.Value >= d.ExhaustedPressure {
		confidence -= 0.10
	}
	if capacity.Value < d.ThinCapacity {
		confidence -= 0.15
	}

	confidence = maxf(round2(confidence), 0.0)

	if confidence < d.AcceptThreshold {
		return Decision{
			Accept:        false,
			AllowedStyles: []string{StyleNoTrade},
			Confidence:    confidence,
			Explanation:   "confidence below threshold",
		}
	}

	return Decision{
		Accept:        true,
		AllowedStyles: judgment.AllowedStyles,
		Confidence:    confidence,
		Explanation:   "decision accepted",
	}
}
