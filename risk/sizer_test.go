package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeBasic(t *testing.T) {
	t.Parallel()

	p := NewPositionSizer(1.0, 0.01)
	assert.InDelta(t, 100.0, p.Size(100, 100, 99), 1e-9)
}

func TestSizeZeroOnDegenerateStop(t *testing.T) {
	t.Parallel()

	p := NewPositionSizer(1.0, 0.01)
	assert.Zero(t, p.Size(100, 100, 100))
}

func TestSizeDustSuppression(t *testing.T) {
	t.Parallel()

	p := NewPositionSizer(1.0, 0.01)
	// raw size = 0.5/100 = 0.005 < 0.01 min
	assert.Zero(t, p.Size(0.5, 2000, 1900))
}

func TestSizeRoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	p := NewPositionSizer(1.0, 0.01)
	// 100 / 3 = 33.333...
	assert.InDelta(t, 33.33, p.Size(100, 103, 100), 1e-9)
}

func TestComputeCarriesReason(t *testing.T) {
	t.Parallel()

	p := NewPositionSizer(1.0, 0.01)
	s := p.Compute(100, 100, 99, "TREND", 0.25, 0.0012)

	assert.InDelta(t, 100.0, s.Size, 1e-9)
	assert.InDelta(t, 100.0, s.EffectiveRisk, 1e-9)
	assert.Contains(t, s.Reason, "regime=TREND")
	assert.Contains(t, s.Reason, "stress=0.25")
}
