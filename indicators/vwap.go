package indicators

import (
	"math"

	"github.com/mkrein/tradegate/market"
)

// VWAPSnapshot is the per-bar feature set produced by the VWAP engine.
type VWAPSnapshot struct {
	VWAP      float64
	VWAPDev   float64 // (close - vwap) / vwap
	VolWeight float64 // volume relative to its moving average
	BarRange  float64
	AvgRange  float64
}

// VWAP is a streaming VWAP and volume-distribution engine. With a zero
// rolling window it accumulates price*volume over the whole session;
// with a positive window it keeps a sliding VWAP instead. Volume weight
// and average range use their own short moving averages.
type VWAP struct {
	rollingWindow int
	volMAWindow   int
	rangeMAWindow int

	pvSum  float64
	volSum float64
	ring   []market.Candle // only kept in rolling mode

	vols   []float64
	ranges []float64

	last  market.Candle
	count int
}

// NewVWAP creates a cumulative (session) VWAP engine.
func NewVWAP() *VWAP {
	return NewRollingVWAP(0)
}

// NewRollingVWAP creates a VWAP engine over a sliding window of bars.
// window <= 0 means cumulative.
func NewRollingVWAP(window int) *VWAP {
	return &VWAP{
		rollingWindow: window,
		volMAWindow:   20,
		rangeMAWindow: 20,
	}
}

func (v *VWAP) Warmup() int {
	w := v.volMAWindow
	if v.rangeMAWindow > w {
		w = v.rangeMAWindow
	}
	if v.rollingWindow > w {
		w = v.rollingWindow
	}
	return w
}

func (v *VWAP) Reset() {
	v.pvSum = 0
	v.volSum = 0
	v.ring = v.ring[:0]
	v.vols = v.vols[:0]
	v.ranges = v.ranges[:0]
	v.count = 0
}

func (v *VWAP) Update(c market.Candle) {
	v.pvSum += c.Typical() * c.Volume
	v.volSum += c.Volume

	if v.rollingWindow > 0 {
		v.ring = append(v.ring, c)
		if len(v.ring) > v.rollingWindow {
			old := v.ring[0]
			v.pvSum -= old.Typical() * old.Volume
			v.volSum -= old.Volume
			v.ring = v.ring[1:]
		}
	}

	v.vols = append(v.vols, c.Volume)
	if len(v.vols) > v.volMAWindow {
		v.vols = v.vols[1:]
	}
	v.ranges = append(v.ranges, c.Range())
	if len(v.ranges) > v.rangeMAWindow {
		v.ranges = v.ranges[1:]
	}

	v.last = c
	v.count++
}

func (v *VWAP) Ready() bool {
	return v.count > 0 && v.volSum > 0
}

// Value returns the current VWAP, 0 before the first bar with volume.
func (v *VWAP) Value() float64 {
	if !v.Ready() {
		return 0
	}
	return v.pvSum / v.volSum
}

// Snapshot returns the feature set for the most recent bar. Volume
// weight defaults to 1.0 until the volume moving average is meaningful.
func (v *VWAP) Snapshot() VWAPSnapshot {
	snap := VWAPSnapshot{VolWeight: 1.0}
	if !v.Ready() {
		return snap
	}

	vwap := v.pvSum / v.volSum
	snap.VWAP = vwap
	if vwap != 0 {
		snap.VWAPDev = (v.last.Close - vwap) / vwap
	}

	if volMA := mean(v.vols); volMA > 0 && !math.IsNaN(volMA) {
		snap.VolWeight = v.last.Volume / volMA
	}

	snap.BarRange = v.last.Range()
	if len(v.ranges) >= v.rangeMAWindow {
		snap.AvgRange = mean(v.ranges)
	}
	return snap
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
