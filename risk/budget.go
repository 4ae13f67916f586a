// Package risk translates a market verdict into a bounded, explainable
// risk exposure: a USD budget, a protective stop, and an order size.
package risk

import (
	"math"
)

// Stress states bucketed from the raw [0,1] stress score. A score of
// exactly zero means the stress detector is still warming up.
const (
	StressWarmup = "WARMUP"
	StressLow    = "LOW_STRESS"
	StressMed    = "MED_STRESS"
	StressHigh   = "HIGH_STRESS"
	StressPanic  = "PANIC"
)

const baseRisk = 0.01 // 1% of equity before multipliers

var stressMult = map[string]float64{
	StressLow:    1.00,
	StressMed:    0.60,
	StressHigh:   0.25,
	StressPanic:  0.00,
	StressWarmup: 0.00,
}

var regimeMult = map[string]float64{
	"TREND":          1.20,
	"ACCUMULATION":   0.90,
	"DISTRIBUTION":   0.70,
	"MEAN_REVERSION": 0.55,
	"UNKNOWN":        0.00,
}

// BudgetMapper converts account equity plus market context into a
// bounded USD risk amount via fixed multiplier tables.
type BudgetMapper struct {
	MinRiskUSD float64
	MaxRiskPct float64

	// ForceTrade substitutes ForceMinRiskUSD when the computed budget is
	// zero. Dry-run wiring validation only; off by default.
	ForceTrade      bool
	ForceMinRiskUSD float64
}

// NewBudgetMapper returns a mapper with the given bounds.
func NewBudgetMapper(minRiskUSD, maxRiskPct float64) *BudgetMapper {
	return &BudgetMapper{MinRiskUSD: minRiskUSD, MaxRiskPct: maxRiskPct}
}

// Budget is the result of a risk-budget computation, with the individual
// multipliers retained so the sizing is reconstructible.
type Budget struct {
	RiskAmount  float64
	StressState string
	StressMult  float64
	RegimeMult  float64
	VWAPMult    float64
}

// StressState buckets a stress score.
func StressState(score float64) string {
	switch {
	case score == 0.0:
		return StressWarmup
	case score <= 0.3:
		return StressLow
	case score <= 0.6:
		return StressMed
	case score <= 0.9:
		return StressHigh
	default:
		return StressPanic
	}
}

func vwapClamp(devAbs float64) float64 {
	switch {
	case devAbs < 0.0003:
		return 1.00
	case devAbs < 0.0007:
		return 0.80
	case devAbs < 0.0012:
		return 0.50
	default:
		return 0.25
	}
}

// Compute maps equity and market context to a bounded risk budget.
func (m *BudgetMapper) Compute(equity, stressScore float64, regime string, vwapDev float64) Budget {
	state := StressState(stressScore)

	sm := stressMult[state]
	rm := regimeMult[regime] // absent regimes map to 0
	vm := vwapClamp(math.Abs(vwapDev))

	raw := equity * baseRisk * sm * rm * vm
	final := math.Max(m.MinRiskUSD, math.Min(raw, equity*m.MaxRiskPct))

	if m.ForceTrade && final <= 0 {
		final = m.ForceMinRiskUSD
	}

	return Budget{
		RiskAmount:  round2(final),
		StressState: state,
		StressMult:  sm,
		RegimeMult:  rm,
		VWAPMult:    vm,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
