package indicators

import "math"

// ewmaStat tracks an exponentially weighted mean and variance.
type ewmaStat struct {
	alpha    float64
	mean     float64
	variance float64
	seeded   bool
}

func (s *ewmaStat) observe(x float64) {
	if !s.seeded {
		s.mean = x
		s.seeded = true
		return
	}
	delta := x - s.mean
	s.mean += s.alpha * delta
	s.variance = (1-s.alpha)*(s.variance + s.alpha*delta*delta)
}

func (s *ewmaStat) zScore(x float64) float64 {
	if s.variance <= 0 {
		return 0
	}
	return (x - s.mean) / math.Sqrt(s.variance)
}

// StressDetector turns the dispersion of the VWAP deviation and volume
// weight features into a stress score in [0, 1]. It returns 0.0 until
// minObs finite observations have been seen; a score of 0.0 therefore
// always reads as warmup or calm, never as an error.
type StressDetector struct {
	minObs int
	dev    ewmaStat
	volW   ewmaStat

	obs  int
	last float64
}

// NewStressDetector creates a detector that needs minObs bars before it
// reports a non-zero score.
func NewStressDetector(minObs int) *StressDetector {
	return &StressDetector{
		minObs: minObs,
		dev:    ewmaStat{alpha: 0.05},
		volW:   ewmaStat{alpha: 0.05},
	}
}

// Observe folds one bar's features into the running statistics.
// Non-finite inputs are dropped.
func (d *StressDetector) Observe(vwapDev, volWeight float64) {
	if !isFinite(vwapDev) || !isFinite(volWeight) {
		return
	}

	zd := d.dev.zScore(vwapDev)
	zv := d.volW.zScore(volWeight)
	d.dev.observe(vwapDev)
	d.volW.observe(volWeight)
	d.obs++

	// three sigmas of joint dispersion saturate the score
	raw := math.Sqrt((zd*zd + zv*zv) / 2)
	d.last = clamp01(raw / 3)
}

func (d *StressDetector) Ready() bool {
	return d.obs >= d.minObs
}

// Score returns the current stress score, 0.0 during warmup.
func (d *StressDetector) Score() float64 {
	if !d.Ready() {
		return 0.0
	}
	return d.last
}

func (d *StressDetector) Reset() {
	d.dev = ewmaStat{alpha: d.dev.alpha}
	d.volW = ewmaStat{alpha: d.volW.alpha}
	d.obs = 0
	d.last = 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
