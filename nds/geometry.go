package nds

import "math"

// Structural stability tags.
const (
	GeomStable     = "STABLE"
	GeomExpanding  = "EXPANDING"
	GeomTransition = "TRANSITION"
)

// Geometry describes the market's geometric condition: compression and
// slope-normalized descriptors plus a stability tag. Purely descriptive,
// no accept/reject logic.
type Geometry struct {
	Compression    float64
	Expansion      float64
	SlopeNorm      float64
	Stability      string
	Structure      string // regime label
	TrendDirection string // DirUp / DirDown / "" when flat
}

// GeometryEngine derives structural descriptors from the tick context.
type GeometryEngine struct{}

func NewGeometryEngine() *GeometryEngine { return &GeometryEngine{} }

// Evaluate computes the geometry descriptor for one tick.
func (g *GeometryEngine) Evaluate(ctx Context) Geometry {
	avgRange := math.Max(ctx.AvgRange, 1e-6)
	atr := math.Max(ctx.ATR, 1e-6)

	compression := ctx.BarRange / avgRange
	slopeNorm := ctx.VWAPDev / atr

	var stability string
	switch {
	case compression < 0.75 && abs(slopeNorm) < 0.8:
		stability = GeomStable
	case compression > 1.25:
		stability = GeomExpanding
	default:
		stability = GeomTransition
	}

	dir := ""
	if slopeNorm > 0 {
		dir = DirUp
	} else if slopeNorm < 0 {
		dir = DirDown
	}

	return Geometry{
		Compression:    round4(compression),
		Expansion:      round4(ctx.BarRange / avgRange),
		SlopeNorm:      round4(slopeNorm),
		Stability:      stability,
		Structure:      ctx.Regime,
		TrendDirection: dir,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
