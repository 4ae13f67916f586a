package execution

import (
	"fmt"
	"sync"
	"time"

	"github.com/mkrein/tradegate/monitor"
)

type windowEvent struct {
	at      time.Time
	success bool
}

type latencySample struct {
	at time.Time
	ms float64
}

// RollingMetrics tracks execution outcomes over a sliding time window.
// Events older than the window are purged lazily on each read or write;
// a reject ratio above 0.50 inside the window trips the kill switch
// exactly once.
type RollingMetrics struct {
	mu     sync.Mutex
	kill   *monitor.KillSwitch
	window time.Duration

	sent     int
	filled   int
	rejected int

	events    []windowEvent
	latencies []latencySample

	avgLatencyMs float64
	triggered    bool

	now func() time.Time
}

const spikeRejectRatio = 0.50

// NewRollingMetrics returns metrics over the given window. kill may be
// nil when no circuit breaking is wanted (tests, backtests).
func NewRollingMetrics(kill *monitor.KillSwitch, windowSec int) *RollingMetrics {
	return &RollingMetrics{
		kill:   kill,
		window: time.Duration(windowSec) * time.Second,
		now:    time.Now,
	}
}

// OnSend records an outgoing order attempt.
func (m *RollingMetrics) OnSend() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent++
	m.events = append(m.events, windowEvent{at: m.now(), success: true})
}

// OnReject records an adapter rejection and escalates to the kill
// switch if the windowed reject ratio spikes.
func (m *RollingMetrics) OnReject(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rejected++
	m.events = append(m.events, windowEvent{at: m.now(), success: false})

	if m.rejectRatioLocked() > spikeRejectRatio && !m.triggered {
		m.triggered = true
		if m.kill != nil {
			m.kill.Trigger(fmt.Sprintf("execution reject spike: %s", reason))
		}
	}
}

// OnFill records a successful fill and folds its latency into the
// rolling average.
func (m *RollingMetrics) OnFill(latencyMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filled++
	now := m.now()
	m.latencies = append(m.latencies, latencySample{at: now, ms: latencyMs})

	i := 0
	for i < len(m.latencies) && now.Sub(m.latencies[i].at) > m.window {
		i++
	}
	m.latencies = m.latencies[i:]

	var sum float64
	for _, s := range m.latencies {
		sum += s.ms
	}
	if len(m.latencies) > 0 {
		m.avgLatencyMs = sum / float64(len(m.latencies))
	}
}

// RejectRatioWindow purges stale events and returns rejects/total over
// the window, 0 when empty.
func (m *RollingMetrics) RejectRatioWindow() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejectRatioLocked()
}

func (m *RollingMetrics) rejectRatioLocked() float64 {
	now := m.now()
	i := 0
	for i < len(m.events) && now.Sub(m.events[i].at) > m.window {
		i++
	}
	m.events = m.events[i:]

	if len(m.events) == 0 {
		return 0
	}
	rejects := 0
	for _, e := range m.events {
		if !e.success {
			rejects++
		}
	}
	return float64(rejects) / float64(len(m.events))
}

// AvgLatencyMs returns the rolling average fill latency.
func (m *RollingMetrics) AvgLatencyMs() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.avgLatencyMs
}

// Totals returns lifetime sent/filled/rejected counters.
func (m *RollingMetrics) Totals() (sent, filled, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent, m.filled, m.rejected
}
