package exitengine

// M1Executor maps a confirmed severity to a concrete close action.
// No analysis here; deterministic policy only.
type M1Executor struct {
	PartialCloseRatio   float64
	PnLProtectThreshold float64
}

// NewM1Executor clamps the partial ratio to [0,1].
func NewM1Executor(partialCloseRatio, pnlProtectThreshold float64) *M1Executor {
	if partialCloseRatio < 0 {
		partialCloseRatio = 0
	}
	if partialCloseRatio > 1 {
		partialCloseRatio = 1
	}
	return &M1Executor{
		PartialCloseRatio:   partialCloseRatio,
		PnLProtectThreshold: pnlProtectThreshold,
	}
}

// Execute converts the confirmation into an Action for the position.
func (e *M1Executor) Execute(confirmation Confirmation, pos PositionContext) Action {
	if !confirmation.Confirmed || confirmation.Severity == SeverityHold {
		return Action{Close: false, CloseRatio: 0, Reason: "M1: HOLD - no confirmed exit"}
	}

	switch confirmation.Severity {
	case SeverityPartial:
		if pos.UnrealizedPnL < e.PnLProtectThreshold {
			return Action{Close: false, CloseRatio: 0,
				Reason: "M1: PARTIAL blocked - PnL below protection threshold"}
		}
		return Action{Close: true, CloseRatio: e.PartialCloseRatio,
			Reason: "M1: PARTIAL exit approved"}

	case SeverityFull:
		return Action{Close: true, CloseRatio: 1.0, Reason: "M1: FULL exit approved"}
	}

	return Action{Close: false, CloseRatio: 0, Reason: "M1: undefined exit state"}
}
