package nds

import "strings"

// Judgment decides IF trading is allowed, WHAT style is allowed, and
// assigns a confidence score in [0,1].
type Judgment struct {
	Accept        bool
	AllowedStyles []string
	Confidence    float64
	Explanation   string
}

// JudgmentEngine accumulates confidence additively from regime-conditioned
// rules with a hard stress veto up front.
type JudgmentEngine struct {
	// AcceptThreshold is the minimum confidence to accept. Boundary is
	// inclusive: exactly the threshold accepts.
	AcceptThreshold float64
	HardStressVeto  float64
}

func NewJudgmentEngine() *JudgmentEngine {
	return &JudgmentEngine{
		AcceptThreshold: 0.55,
		HardStressVeto:  0.85,
	}
}

// Evaluate judges one tick.
func (j *JudgmentEngine) Evaluate(ctx Context) Judgment {
	if ctx.Stress >= j.HardStressVeto {
		return Judgment{
			Accept:        false,
			AllowedStyles: []string{StyleNoTrade},
			Confidence:    0.0,
			Explanation:   "stress too high",
		}
	}

	var (
		confidence float64
		styles     []string
		notes      []string
	)

	switch ctx.Regime {
	case RegimeTrend:
		if ctx.VWAPDev > 0 {
			confidence += 0.5
			styles = append(styles, StyleLongTrend)
			notes = append(notes, "positive VWAP trend")
		}
	case RegimeRange:
		if abs(ctx.VWAPDev) < 0.004 {
			confidence += 0.3
			styles = append(styles, StyleLongMean)
			notes = append(notes, "mean reversion zone")
		}
	}

	if ctx.BarRange > ctx.AvgRange*1.8 {
		confidence -= 0.2
		notes = append(notes, "excess volatility")
	}

	if ctx.Stress < 0.35 {
		confidence += 0.2
	} else if ctx.Stress > 0.65 {
		confidence -= 0.3
		notes = append(notes, "stress drag")
	}

	accept := confidence >= j.AcceptThreshold && len(styles) > 0
	if !accept {
		styles = []string{StyleNoTrade}
	}

	explanation := strings.Join(notes, " | ")
	if explanation == "" {
		explanation = "low confidence"
	}

	return Judgment{
		Accept:        accept,
		AllowedStyles: styles,
		Confidence:    round2(maxf(confidence, 0.0)),
		Explanation:   explanation,
	}
}
