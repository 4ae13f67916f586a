package execution

import (
	"context"

	"github.com/google/uuid"
)

// Result is the adapter's report of one execution attempt. The core
// never depends on broker-specific fields beyond these.
type Result struct {
	Success   bool
	OrderID   string
	FillPrice float64
	Reason    string
}

// Adapter is the external order-placement collaborator. Any broker
// bridge (mock, paper, live) satisfying this contract is interchangeable.
type Adapter interface {
	Execute(ctx context.Context, intent Intent) Result
}

// MockAdapter is a deterministic dry-run adapter: instant fills at the
// limit price, fresh client order ids, no broker round-trip.
type MockAdapter struct{}

func (MockAdapter) Execute(_ context.Context, intent Intent) Result {
	return Result{
		Success:   true,
		OrderID:   uuid.NewString(),
		FillPrice: intent.LimitPrice,
	}
}

// RejectingAdapter refuses every order with a fixed reason. Test and
// fire-drill tool for the feedback/kill-switch path.
type RejectingAdapter struct {
	RejectReason string
}

func (a RejectingAdapter) Execute(context.Context, Intent) Result {
	reason := a.RejectReason
	if reason == "" {
		reason = "REJECTED_BY_ADAPTER"
	}
	return Result{Success: false, Reason: reason}
}
