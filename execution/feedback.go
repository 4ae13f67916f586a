package execution

import (
	"math"
	"sync"

	"github.com/mkrein/tradegate/monitor"
)

// FeedbackController derives throttle and size multipliers plus a pause
// flag from the rolling reject ratio. Controls degrade monotonically
// under sustained rejects and recover once the ratio falls below half
// the soft threshold.
type FeedbackController struct {
	mu   sync.Mutex
	kill *monitor.KillSwitch

	softRejectRatio     float64
	criticalRejectRatio float64
	minThrottle         float64
	minSizeMultiplier   float64

	throttle       float64
	sizeMultiplier float64
	pause          bool
}

// NewFeedbackController returns a controller in the neutral state.
func NewFeedbackController(kill *monitor.KillSwitch, soft, critical, minThrottle, minSizeMult float64) *FeedbackController {
	f := &FeedbackController{
		kill:                kill,
		softRejectRatio:     soft,
		criticalRejectRatio: critical,
		minThrottle:         minThrottle,
		minSizeMultiplier:   minSizeMult,
	}
	f.Reset()
	return f
}

// Reset restores neutral adaptive controls.
func (f *FeedbackController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.throttle = 1.0
	f.sizeMultiplier = 1.0
	f.pause = false
}

// Evaluate updates the adaptive controls from the metrics window.
func (f *FeedbackController) Evaluate(metrics *RollingMetrics) {
	ratio := metrics.RejectRatioWindow()

	f.mu.Lock()
	defer f.mu.Unlock()

	// hard guard: sustained rejects stop everything
	if ratio >= f.criticalRejectRatio {
		if f.kill != nil {
			f.kill.Trigger("critical execution reject ratio")
		}
		f.pause = true
		return
	}

	if ratio > f.softRejectRatio {
		f.throttle *= 0.8
		f.sizeMultiplier *= 0.9
	} else if ratio < f.softRejectRatio*0.5 {
		f.pause = false
	}

	f.throttle = math.Max(f.throttle, f.minThrottle)
	f.sizeMultiplier = math.Max(f.sizeMultiplier, f.minSizeMultiplier)

	if f.throttle <= f.minThrottle {
		f.pause = true
	}
}

// AllowSend reports whether execution is currently allowed.
func (f *FeedbackController) AllowSend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.pause
}

// AdjustSize applies the adaptive size multiplier, rounded to two
// decimals. Non-finite results fall back to the unmodified size.
func (f *FeedbackController) AdjustSize(size float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	adjusted := math.Round(size*f.sizeMultiplier*100) / 100
	if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
		return size
	}
	return adjusted
}

// Throttle returns the current throttle in [minThrottle, 1].
func (f *FeedbackController) Throttle() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.throttle
}

// SizeMultiplier returns the current size multiplier.
func (f *FeedbackController) SizeMultiplier() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sizeMultiplier
}
