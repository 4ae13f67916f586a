// Package exitengine implements the three-stage multi-timeframe exit
// cascade: an M15 warning detector, an M5 confirmation gate and an M1
// executor. Every stage is stateless and side-effect free; the
// orchestrator chains them for open positions.
package exitengine

// SignalType classifies an M15 exit warning.
type SignalType string

const (
	SignalNone         SignalType = "NONE"
	SignalWeakening    SignalType = "WEAKENING"
	SignalReversal     SignalType = "REVERSAL"
	SignalDistribution SignalType = "DISTRIBUTION"
)

// Severity is the confirmed exit escalation level.
type Severity string

const (
	SeverityHold    Severity = "HOLD"
	SeverityPartial Severity = "PARTIAL"
	SeverityFull    Severity = "FULL"
)

// Position sides.
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Warning is the M15 detector output.
type Warning struct {
	Active     bool
	SignalType SignalType
	Confidence float64
	Reason     string
}

// Confirmation is the M5 gate output.
type Confirmation struct {
	Confirmed bool
	Severity  Severity
	Reason    string
}

// Action is the final M1 output consumed by the execution layer.
type Action struct {
	Close      bool
	CloseRatio float64
	Reason     string
}

// StructureContext carries the structural metrics a stage needs.
type StructureContext struct {
	SlopeNorm float64
	SlopePrev float64
	Expansion float64
	Regime    string
}

// VWAPContext carries VWAP deviation and slope for one timeframe.
type VWAPContext struct {
	Deviation float64
	Slope     float64
}

// FractalContext carries cycle-stability information.
type FractalContext struct {
	Stability float64
}

// MomentumContext carries short-term momentum metrics.
type MomentumContext struct {
	MomentumNorm float64
}

// PositionContext describes the open position being evaluated.
type PositionContext struct {
	Side          string
	UnrealizedPnL float64
}
