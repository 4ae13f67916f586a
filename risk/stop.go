package risk

import "math"

// Stop reason tags.
const (
	StopATRFallback = "ATR_FALLBACK"
	StopEWMACVaR    = "EWMA_CVAR"
)

// Trade directions.
const (
	Long  = "LONG"
	Short = "SHORT"
)

// StopEngine computes protective stop prices from ATR and a streaming
// loss-tail estimator. The tail is a single EWMA of negative returns
// updated in O(1) per call; it persists across calls and is never
// recomputed from history.
type StopEngine struct {
	alpha      float64
	minSamples int

	tail    float64
	tailSet bool
	samples int
}

// NewStopEngine returns a stop engine with the given EWMA speed and
// minimum observation count.
func NewStopEngine(alpha float64, minSamples int) *StopEngine {
	return &StopEngine{alpha: alpha, minSamples: minSamples}
}

// StopInput is the per-call context for a stop computation.
type StopInput struct {
	Direction  string // Long | Short
	EntryPrice float64
	ATR        float64
	Stress     float64
	Slope      float64
	Returns    []float64 // recent close-to-close returns, newest last
}

// Compute returns a stop price and the tag describing how it was derived.
//
// With fewer than minSamples return observations the stop falls back to a
// pure ATR distance. Otherwise the newest return updates the loss tail and
// the final stop is the tighter of the ATR stop and the CVaR-style stop.
func (s *StopEngine) Compute(in StopInput) (float64, string) {
	atrStop := in.EntryPrice - in.ATR
	if in.Direction == Short {
		atrStop = in.EntryPrice + in.ATR
	}

	if len(in.Returns) < s.minSamples {
		return atrStop, StopATRFallback
	}

	s.update(in.Returns[len(in.Returns)-1])

	cvarStop := atrStop
	if s.tailSet {
		cvarStop = in.EntryPrice * (1.0 + s.tail)
	}

	if in.Direction == Short {
		return math.Max(atrStop, cvarStop), StopEWMACVaR
	}
	return math.Min(atrStop, cvarStop), StopEWMACVaR
}

// update folds one return into the loss tail. Non-negative returns leave
// the tail untouched.
func (s *StopEngine) update(r float64) {
	if r >= 0 {
		return
	}
	s.samples++
	if !s.tailSet {
		s.tail = r
		s.tailSet = true
		return
	}
	s.tail = (1.0-s.alpha)*s.tail + s.alpha*r
}

// Tail exposes the current tail estimate for journaling. The second
// return reports whether any loss has been observed yet.
func (s *StopEngine) Tail() (float64, bool) {
	return s.tail, s.tailSet
}
