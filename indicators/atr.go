package indicators

import (
	"math"

	"github.com/mkrein/tradegate/market"
)

// ATR is a streaming Average True Range over a simple moving window.
type ATR struct {
	window int

	ranges  []float64
	prev    market.Candle
	hasPrev bool
}

// NewATR creates an ATR over the given window of true ranges.
func NewATR(window int) *ATR {
	return &ATR{
		window: window,
		ranges: make([]float64, 0, window),
	}
}

func (a *ATR) Warmup() int {
	// TR needs the previous close
	return a.window + 1
}

func (a *ATR) Reset() {
	a.ranges = a.ranges[:0]
	a.hasPrev = false
}

func (a *ATR) Update(c market.Candle) {
	if !a.hasPrev {
		a.prev = c
		a.hasPrev = true
		return
	}

	tr := trueRange(c, a.prev)
	a.ranges = append(a.ranges, tr)
	if len(a.ranges) > a.window {
		a.ranges = a.ranges[1:]
	}
	a.prev = c
}

func (a *ATR) Ready() bool {
	return len(a.ranges) >= a.window
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return mean(a.ranges)
}

func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}
