package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkrein/tradegate/monitor"
)

func metricsWithClock(kill *monitor.KillSwitch, clock *time.Time) *RollingMetrics {
	m := NewRollingMetrics(kill, 60)
	m.now = func() time.Time { return *clock }
	return m
}

func TestRejectRatioWindow(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := metricsWithClock(nil, &clock)

	assert.Zero(t, m.RejectRatioWindow())

	m.OnSend()
	m.OnSend()
	m.OnReject("SPREAD")
	assert.InDelta(t, 1.0/3.0, m.RejectRatioWindow(), 1e-9)
}

func TestRejectRatioDecaysToZeroPastWindow(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := metricsWithClock(nil, &clock)

	m.OnSend()
	m.OnReject("SPREAD")
	assert.InDelta(t, 0.5, m.RejectRatioWindow(), 1e-9)

	clock = clock.Add(61 * time.Second)
	assert.Zero(t, m.RejectRatioWindow())
}

func TestRejectSpikeTripsKillSwitchOnce(t *testing.T) {
	t.Parallel()

	kill := monitor.New(3.0, 100, 300, 0.95)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := metricsWithClock(kill, &clock)

	m.OnSend()
	m.OnReject("SPREAD") // ratio 0.5, not above threshold
	assert.True(t, kill.CanTrade())

	m.OnReject("SPREAD") // ratio 2/3 > 0.5
	assert.False(t, kill.CanTrade())
	assert.Contains(t, kill.Status().Reason, "reject spike")

	// trigger flag keeps further rejects from re-tripping after a reset
	assert.True(t, m.triggered)
}

func TestLatencyRollingAverage(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := metricsWithClock(nil, &clock)

	m.OnFill(10)
	m.OnFill(20)
	assert.InDelta(t, 15.0, m.AvgLatencyMs(), 1e-9)

	// old samples age out of the window
	clock = clock.Add(61 * time.Second)
	m.OnFill(50)
	assert.InDelta(t, 50.0, m.AvgLatencyMs(), 1e-9)
}

func TestTotals(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := metricsWithClock(nil, &clock)

	m.OnSend()
	m.OnSend()
	m.OnFill(5)
	m.OnReject("X")

	sent, filled, rejected := m.Totals()
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, filled)
	assert.Equal(t, 1, rejected)
}
