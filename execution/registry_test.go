package execution

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistryIntent() Intent {
	return Intent{
		Symbol:     "XAUUSD",
		Side:       SideBuy,
		Size:       1.5,
		LimitPrice: 2400.25,
		StopPrice:  2390.00,
	}
}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	rid := r.Create(testRegistryIntent())

	rec, ok := r.Get(rid)
	require.True(t, ok)
	assert.Equal(t, StatusCreated, rec.Status)
	assert.Equal(t, "XAUUSD", rec.Symbol)

	r.MarkSent(rid)
	rec, _ = r.Get(rid)
	assert.Equal(t, StatusSent, rec.Status)

	r.MarkFilled(rid, "ORD-1", 2400.30)
	rec, _ = r.Get(rid)
	assert.Equal(t, StatusFilled, rec.Status)
	assert.Equal(t, "ORD-1", rec.OrderID)
	assert.InDelta(t, 2400.30, rec.FillPrice, 1e-9)
	assert.GreaterOrEqual(t, rec.LatencyMs, 0.0)
}

func TestRegistryTransitionsIgnoreUnknownIDs(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	r.MarkSent("missing")
	r.MarkFilled("missing", "X", 1)
	r.MarkRejected("missing", "nope")
	assert.Zero(t, r.Stats().Total)
}

func TestHasSimilarOnlyMatchesActiveRecords(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	intent := testRegistryIntent()

	assert.False(t, r.HasSimilar(intent))

	rid := r.Create(intent)
	assert.True(t, r.HasSimilar(intent))

	r.MarkSent(rid)
	assert.True(t, r.HasSimilar(intent))

	r.MarkFilled(rid, "ORD-1", intent.LimitPrice)
	assert.False(t, r.HasSimilar(intent))

	rid2 := r.Create(intent)
	r.MarkRejected(rid2, "NO_LIQUIDITY")
	assert.False(t, r.HasSimilar(intent))
}

func TestHasSimilarPriceTolerance(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	r.Create(testRegistryIntent())

	near := testRegistryIntent()
	near.LimitPrice += 5e-7
	assert.True(t, r.HasSimilar(near))

	far := testRegistryIntent()
	far.LimitPrice += 2e-6
	assert.False(t, r.HasSimilar(far))

	otherSide := testRegistryIntent()
	otherSide.Side = SideSell
	assert.False(t, r.HasSimilar(otherSide))
}

func TestRegistryEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	r := NewRegistry(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	r.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	var ids []string
	for i := 0; i < 5; i++ {
		in := testRegistryIntent()
		in.LimitPrice += float64(i) // distinct intents
		ids = append(ids, r.Create(in))
	}

	assert.Equal(t, 3, r.Stats().Total)

	// the two oldest were evicted regardless of status
	_, ok := r.Get(ids[0])
	assert.False(t, ok)
	_, ok = r.Get(ids[1])
	assert.False(t, ok)
	_, ok = r.Get(ids[4])
	assert.True(t, ok)
}

func TestRegistryStats(t *testing.T) {
	t.Parallel()

	r := NewRegistry(100)
	for i := 0; i < 4; i++ {
		in := testRegistryIntent()
		in.LimitPrice += float64(i)
		rid := r.Create(in)
		if i%2 == 0 {
			r.MarkFilled(rid, fmt.Sprintf("ORD-%d", i), in.LimitPrice)
		} else {
			r.MarkRejected(rid, "SPREAD")
		}
	}

	s := r.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Filled)
	assert.Equal(t, 2, s.Rejected)
	assert.InDelta(t, 0.5, s.FillRatio, 1e-9)
	assert.InDelta(t, 0.5, s.RejectRatio, 1e-9)
}

func TestAllReturnsOldestFirst(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	r.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	for i := 0; i < 3; i++ {
		in := testRegistryIntent()
		in.LimitPrice += float64(i)
		r.Create(in)
	}

	all := r.All()
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.Before(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.Before(all[2].CreatedAt))
}
