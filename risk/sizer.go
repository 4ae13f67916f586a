package risk

import (
	"fmt"
	"math"
)

// PositionSizer converts a risk budget and a stop distance into an order
// size, suppressing dust orders below the venue minimum.
type PositionSizer struct {
	PointValue float64
	MinSize    float64
}

// NewPositionSizer returns a sizer for an instrument with the given USD
// value per 1.0 price move.
func NewPositionSizer(pointValue, minSize float64) *PositionSizer {
	return &PositionSizer{PointValue: pointValue, MinSize: minSize}
}

// Size returns the order size for the budget, or 0 when the stop
// distance is degenerate or the raw size is below MinSize.
func (p *PositionSizer) Size(riskBudget, entryPrice, stopPrice float64) float64 {
	riskPerUnit := math.Abs(entryPrice-stopPrice) * p.PointValue
	if riskPerUnit <= 0 {
		return 0
	}

	raw := riskBudget / riskPerUnit
	if raw < p.MinSize {
		return 0
	}
	return round2(raw)
}

// Sizing is the result of Compute, carrying the effective risk actually
// taken and a human-readable reason string.
type Sizing struct {
	Size          float64
	EffectiveRisk float64
	Reason        string
}

// Compute wraps Size with a descriptive reason for journaling.
func (p *PositionSizer) Compute(riskBudget, entryPrice, stopPrice float64, regime string, stress, slope float64) Sizing {
	size := p.Size(riskBudget, entryPrice, stopPrice)
	riskPerUnit := math.Abs(entryPrice-stopPrice) * p.PointValue

	return Sizing{
		Size:          size,
		EffectiveRisk: round2(size * riskPerUnit),
		Reason:        fmt.Sprintf("regime=%s stress=%.2f slope=%.5f", regime, stress, slope),
	}
}
