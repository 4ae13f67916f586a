// Package execution is the order-admission layer: every intent passes
// the gate's kill-switch, feedback-pause, duplicate and throttle checks
// before it reaches a broker adapter, and every attempt is audited in
// the bounded registry and the rolling metrics window.
package execution

import "fmt"

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Intent is a proposed, not-yet-executed order. Immutable by
// convention: the gate derives adjusted copies, never mutates one.
type Intent struct {
	Symbol     string
	Side       string
	Size       float64
	LimitPrice float64
	StopPrice  float64
	TakeProfit float64 // 0 means none
	Comment    string
}

// Validate rejects malformed intents before they can reach an adapter.
func (i Intent) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("intent: symbol is required")
	}
	if i.Side != SideBuy && i.Side != SideSell {
		return fmt.Errorf("intent: side must be BUY or SELL, got %q", i.Side)
	}
	if i.Size <= 0 {
		return fmt.Errorf("intent: size must be positive, got %v", i.Size)
	}
	if i.LimitPrice <= 0 {
		return fmt.Errorf("intent: limit price must be positive, got %v", i.LimitPrice)
	}
	return nil
}

// WithSize returns a copy of the intent with an adjusted size.
func (i Intent) WithSize(size float64) Intent {
	out := i
	out.Size = size
	return out
}
