package indicators

import "github.com/mkrein/tradegate/market"

const returnsDepth = 100

// Snapshot is the full per-bar feature view the decision pipeline
// consumes: VWAP features, regime, stress and trailing returns.
type Snapshot struct {
	Close          float64
	VWAP           float64
	VWAPDev        float64
	VolWeight      float64
	BarRange       float64
	AvgRange       float64
	ATR            float64
	Regime         string
	Stress         float64
	VolatilityNorm float64
	Returns        []float64
}

// Bundle composes the streaming indicators into one Update/Snapshot
// pair so callers feed each bar exactly once.
type Bundle struct {
	vwap   *VWAP
	atr    *ATR
	regime *RegimeDetector
	stress *StressDetector

	returns   []float64
	prevClose float64
	count     int
}

// NewBundle wires the default indicator set: session VWAP, ATR(14) and
// a stress detector that warms up over minObs bars.
func NewBundle(minObs int) *Bundle {
	return &Bundle{
		vwap:    NewVWAP(),
		atr:     NewATR(14),
		regime:  NewRegimeDetector(),
		stress:  NewStressDetector(minObs),
		returns: make([]float64, 0, returnsDepth),
	}
}

func (b *Bundle) Update(c market.Candle) {
	b.vwap.Update(c)
	b.atr.Update(c)

	snap := b.vwap.Snapshot()
	b.stress.Observe(snap.VWAPDev, snap.VolWeight)

	if b.prevClose > 0 {
		b.returns = append(b.returns, c.Close/b.prevClose-1)
		if len(b.returns) > returnsDepth {
			b.returns = b.returns[1:]
		}
	}
	b.prevClose = c.Close
	b.count++
}

func (b *Bundle) Ready() bool {
	return b.vwap.Ready() && b.atr.Ready()
}

// Count returns the number of bars consumed.
func (b *Bundle) Count() int {
	return b.count
}

// Regime exposes the regime detector so callers can calibrate its
// thresholds per symbol.
func (b *Bundle) Regime() *RegimeDetector {
	return b.regime
}

// Snapshot assembles the current feature view. Volatility is the bar
// range normalized against twice the average range, clamped to [0, 1].
func (b *Bundle) Snapshot() Snapshot {
	vs := b.vwap.Snapshot()

	snap := Snapshot{
		Close:     b.prevClose,
		VWAP:      vs.VWAP,
		VWAPDev:   vs.VWAPDev,
		VolWeight: vs.VolWeight,
		BarRange:  vs.BarRange,
		AvgRange:  vs.AvgRange,
		ATR:       b.atr.Value(),
		Regime:    b.regime.Detect(vs),
		Stress:    b.stress.Score(),
		Returns:   append([]float64(nil), b.returns...),
	}
	if vs.AvgRange > 0 {
		snap.VolatilityNorm = clamp01(vs.BarRange / (2 * vs.AvgRange))
	}
	return snap
}
