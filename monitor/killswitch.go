// Package monitor holds the process-wide trading circuit breaker.
//
// One KillSwitch instance is shared by reference between the orchestrator,
// the execution gate and the feedback controller; it is the single
// authority for the tripped state.
package monitor

import (
	"fmt"
	"sync"
	"time"
)

// KillSwitch is the last line of defense before live execution. Once
// tripped it refuses all further trading until a cooldown-gated Reset.
type KillSwitch struct {
	mu sync.Mutex

	maxDrawdownPct float64
	maxStress      float64
	maxRejections  int
	cooldown       time.Duration

	startEquity float64
	armed       bool
	rejections  int
	tripped     bool
	tripReason  string
	tripTime    time.Time

	now func() time.Time // test hook
}

// Option configures a KillSwitch.
type Option func(*KillSwitch)

// WithClock overrides the time source. Used by tests to step the cooldown.
func WithClock(now func() time.Time) Option {
	return func(k *KillSwitch) { k.now = now }
}

// New returns an unarmed, untripped kill switch.
func New(maxDrawdownPct float64, maxRejections, cooldownSeconds int, maxStress float64, opts ...Option) *KillSwitch {
	k := &KillSwitch{
		maxDrawdownPct: maxDrawdownPct,
		maxStress:      maxStress,
		maxRejections:  maxRejections,
		cooldown:       time.Duration(cooldownSeconds) * time.Second,
		now:            time.Now,
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Arm sets the baseline equity and clears trip and rejection state.
// Re-arming always overwrites the previous baseline.
func (k *KillSwitch) Arm(equity float64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.startEquity = equity
	k.armed = true
	k.tripped = false
	k.rejections = 0
}

// CheckEquity trips if drawdown from the armed baseline reaches the
// configured maximum. A no-op before Arm.
func (k *KillSwitch) CheckEquity(current float64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.armed || k.startEquity <= 0 {
		return
	}
	dd := (k.startEquity - current) / k.startEquity * 100
	if dd >= k.maxDrawdownPct {
		k.trip(fmt.Sprintf("max drawdown exceeded: %.2f%%", dd))
	}
}

// CheckStress trips on an extreme stress score.
func (k *KillSwitch) CheckStress(score float64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if score > k.maxStress {
		k.trip("extreme market stress")
	}
}

// RegisterRejection counts an order rejection and trips once the
// configured maximum is reached.
func (k *KillSwitch) RegisterRejection() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.rejections++
	if k.rejections >= k.maxRejections {
		k.trip("too many order rejections")
	}
}

// Trip trips the switch. The first call wins; later calls keep the
// original reason and timestamp.
func (k *KillSwitch) Trip(reason string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.trip(reason)
}

// Trigger is an alias for Trip kept for callers that read better with it.
func (k *KillSwitch) Trigger(reason string) {
	k.Trip(reason)
}

func (k *KillSwitch) trip(reason string) {
	if k.tripped {
		return
	}
	k.tripped = true
	k.tripReason = reason
	k.tripTime = k.now()
}

// CanTrade reports whether trading is currently allowed.
func (k *KillSwitch) CanTrade() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return !k.tripped
}

// Status describes the switch for logging and telemetry.
type Status struct {
	Armed    bool
	Tripped  bool
	Reason   string
	TripTime time.Time
}

func (k *KillSwitch) Status() Status {
	k.mu.Lock()
	defer k.mu.Unlock()
	return Status{
		Armed:    k.armed,
		Tripped:  k.tripped,
		Reason:   k.tripReason,
		TripTime: k.tripTime,
	}
}

// Reset clears the tripped state and rejection count, but only once the
// cooldown window has passed since the trip. Returns whether it cleared.
func (k *KillSwitch) Reset() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.tripTime.IsZero() {
		return false
	}
	if k.now().Sub(k.tripTime) < k.cooldown {
		return false
	}
	k.tripped = false
	k.rejections = 0
	k.tripReason = ""
	return true
}
