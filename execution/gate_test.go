package execution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrein/tradegate/monitor"
)

func testGateConfig() GateConfig {
	return GateConfig{
		MaxRecords:          100,
		WindowSec:           60,
		SoftRejectRatio:     0.25,
		CriticalRejectRatio: 0.90,
		MinThrottle:         0.25,
		MinSizeMultiplier:   0.30,
	}
}

func newTestGate(adapter Adapter, kill *monitor.KillSwitch) *Gate {
	g := NewGate(adapter, kill, testGateConfig(), nil)
	g.sleep = func(time.Duration) {}
	return g
}

func testIntent() Intent {
	return Intent{
		Symbol:     "BTCUSDT",
		Side:       SideBuy,
		Size:       1.0,
		LimitPrice: 50000,
		StopPrice:  49500,
	}
}

func TestSendRejectsInvalidIntent(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)

	intent := testIntent()
	intent.Size = 0
	res := g.Send(context.Background(), intent)

	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, ReasonInvalidIntent)
	assert.Empty(t, g.Registry().All())
}

func TestSendBlockedByKillSwitch(t *testing.T) {
	t.Parallel()

	kill := monitor.New(3.0, 3, 300, 0.95)
	kill.Trip("manual halt")
	g := newTestGate(MockAdapter{}, kill)

	res := g.Send(context.Background(), testIntent())

	assert.False(t, res.Success)
	assert.Equal(t, ReasonKillSwitchActive, res.Reason)
	assert.Empty(t, g.Registry().All())
}

func TestSendBlockedByFeedbackPause(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)
	g.feedback.pause = true

	res := g.Send(context.Background(), testIntent())

	assert.False(t, res.Success)
	assert.Equal(t, ReasonPausedByFeedback, res.Reason)
	assert.Empty(t, g.Registry().All())
}

func TestSendRejectsDuplicateIntent(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)

	// a pending record for the same symbol/side/price blocks re-entry
	g.Registry().Create(testIntent())

	res := g.Send(context.Background(), testIntent())

	assert.False(t, res.Success)
	assert.Equal(t, ReasonDuplicateIntent, res.Reason)
}

func TestSendFillPath(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)

	res := g.Send(context.Background(), testIntent())

	require.True(t, res.Success)
	assert.NotEmpty(t, res.OrderID)
	assert.InDelta(t, 50000, res.FillPrice, 1e-9)

	recs := g.Registry().All()
	require.Len(t, recs, 1)
	assert.Equal(t, StatusFilled, recs[0].Status)
	assert.Equal(t, res.OrderID, recs[0].OrderID)
	assert.InDelta(t, 50000, recs[0].FillPrice, 1e-9)

	sent, filled, rejected := g.Metrics().Totals()
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, filled)
	assert.Zero(t, rejected)
}

func TestSendRejectPathDegradesFeedback(t *testing.T) {
	t.Parallel()

	g := newTestGate(RejectingAdapter{RejectReason: "NO_LIQUIDITY"}, nil)

	res := g.Send(context.Background(), testIntent())

	assert.False(t, res.Success)
	assert.Equal(t, "NO_LIQUIDITY", res.Reason)

	recs := g.Registry().All()
	require.Len(t, recs, 1)
	assert.Equal(t, StatusRejected, recs[0].Status)
	assert.Equal(t, "NO_LIQUIDITY", recs[0].RejectReason)

	sent, filled, rejected := g.Metrics().Totals()
	assert.Equal(t, 1, sent)
	assert.Zero(t, filled)
	assert.Equal(t, 1, rejected)

	// windowed ratio 0.5 exceeds the soft threshold
	assert.InDelta(t, 0.8, g.Feedback().Throttle(), 1e-9)
	assert.InDelta(t, 0.9, g.Feedback().SizeMultiplier(), 1e-9)
}

func TestSendAppliesSizeMultiplier(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)
	g.feedback.sizeMultiplier = 0.9

	intent := testIntent()
	res := g.Send(context.Background(), intent)

	require.True(t, res.Success)
	recs := g.Registry().All()
	require.Len(t, recs, 1)
	assert.InDelta(t, 0.9, recs[0].Size, 1e-9)
	// the caller's intent is untouched
	assert.InDelta(t, 1.0, intent.Size, 1e-12)
}

func TestSendThrottleDelaysSend(t *testing.T) {
	t.Parallel()

	g := newTestGate(MockAdapter{}, nil)
	var slept time.Duration
	g.sleep = func(d time.Duration) { slept = d }

	g.feedback.throttle = 0.8
	res := g.Send(context.Background(), testIntent())

	require.True(t, res.Success)
	assert.InDelta(t, float64(100*time.Millisecond), float64(slept), float64(time.Millisecond))
}
