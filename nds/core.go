package nds

import (
	"fmt"
	"math"
)

// Verdict is the immutable per-tick envelope the orchestrator consumes.
type Verdict struct {
	Market    MarketState
	Structure Geometry
	Pressure  Pressure
	Capacity  Capacity
	Decision  Decision
}

// OverrideConfig holds the adaptive-override hard-gate thresholds.
type OverrideConfig struct {
	Enabled           bool
	MinTrendExpansion float64
	MinVWAPDev        float64
	MaxTradeStress    float64
}

const confirmCapacity = 5

// confirmMemory is a fixed-capacity FIFO of recent trend directions.
// It is the only state the chain carries across ticks.
type confirmMemory struct {
	buf   [confirmCapacity]string
	head  int
	count int
}

func (m *confirmMemory) push(dir string) {
	m.buf[(m.head+m.count)%confirmCapacity] = dir
	if m.count < confirmCapacity {
		m.count++
	} else {
		m.head = (m.head + 1) % confirmCapacity
	}
}

func (m *confirmMemory) clear() {
	m.head, m.count = 0, 0
}

func (m *confirmMemory) aligned(dir string) int {
	n := 0
	for i := 0; i < m.count; i++ {
		if m.buf[(m.head+i)%confirmCapacity] == dir {
			n++
		}
	}
	return n
}

// Core chains the evaluation engines into one verdict per tick and
// applies the adaptive confirmation override on top of base rejections.
type Core struct {
	marketState *MarketStateEngine
	geometry    *GeometryEngine
	pressure    *PressureEngine
	capacity    *CapacityEngine
	judgment    *JudgmentEngine
	decision    *DecisionEngine

	override OverrideConfig
	memory   confirmMemory
}

// NewCore builds the chain with the given override gate thresholds.
func NewCore(override OverrideConfig) *Core {
	return &Core{
		marketState: NewMarketStateEngine(),
		geometry:    NewGeometryEngine(),
		pressure:    NewPressureEngine(),
		capacity:    NewCapacityEngine(),
		judgment:    NewJudgmentEngine(),
		decision:    NewDecisionEngine(),
		override:    override,
	}
}

// confirmationBarsNeeded scales required confirming bars with volatility.
func confirmationBarsNeeded(volatilityNorm float64) int {
	bars := int(math.Round(1 + volatilityNorm*2))
	if bars < 1 {
		return 1
	}
	if bars > 3 {
		return 3
	}
	return bars
}

// Evaluate runs the full chain for one tick.
func (c *Core) Evaluate(ctx Context) Verdict {
	market := c.marketState.Evaluate(ctx)
	structure := c.geometry.Evaluate(ctx)
	pressure := c.pressure.Evaluate(ctx, market)
	capacity := c.capacity.Evaluate(ctx, market, pressure)
	judgment := c.judgment.Evaluate(ctx)
	decision := c.decision.Evaluate(market, structure, pressure, capacity, judgment)

	if c.override.Enabled && !decision.Accept {
		decision = c.applyOverride(ctx, structure, decision)
	}

	return Verdict{
		Market:    market,
		Structure: structure,
		Pressure:  pressure,
		Capacity:  capacity,
		Decision:  decision,
	}
}

// applyOverride may flip a base rejection to an acceptance after enough
// consecutive confirming bars. It never mutates the base decision; every
// path returns a fresh copy.
func (c *Core) applyOverride(ctx Context, structure Geometry, base Decision) Decision {
	gatePassed := structure.Structure == RegimeTrend &&
		(structure.TrendDirection == DirUp || structure.TrendDirection == DirDown) &&
		structure.Expansion >= c.override.MinTrendExpansion &&
		abs(ctx.VWAPDev) >= c.override.MinVWAPDev &&
		ctx.Stress <= c.override.MaxTradeStress

	if !gatePassed {
		c.memory.clear()
		out := base
		out.Explanation = "adaptive hard-gate rejection"
		return out
	}

	c.memory.push(structure.TrendDirection)
	needed := confirmationBarsNeeded(ctx.VolatilityNorm)
	aligned := c.memory.aligned(structure.TrendDirection)

	if aligned < needed {
		out := base
		out.Explanation = fmt.Sprintf("adaptive waiting confirmation %d/%d", aligned, needed)
		return out
	}

	style := StyleTrendLong
	if structure.TrendDirection == DirDown {
		style = StyleTrendShort
	}

	return Decision{
		Accept:        true,
		AllowedStyles: []string{style},
		Confidence:    round2(math.Min(0.70+structure.Expansion*0.10, 0.95)),
		Explanation:   fmt.Sprintf("adaptive confirmation %d/%d", aligned, needed),
	}
}
