// Package journal persists the audit trail of the pipeline: every
// order the gate processed and every decision the core produced.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkrein/tradegate/execution"
)

// DecisionEntry is one evaluated bar: the regime context and the
// decision outcome, accepted or not.
type DecisionEntry struct {
	Time        time.Time
	Symbol      string
	Regime      string
	Stress      float64
	Accept      bool
	Confidence  float64
	Styles      string
	Explanation string
}

type Journal interface {
	RecordOrder(execution.Record) error
	RecordDecision(DecisionEntry) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordOrder(execution.Record) error { return nil }
func (Nop) RecordDecision(DecisionEntry) error { return nil }
func (Nop) Close() error                       { return nil }

// Open builds a journal from the configured backend type: "none",
// "csv" or "sqlite". For CSV the decisions file sits next to the
// orders file with a _decisions suffix.
func Open(kind, tradesFile, dbPath string) (Journal, error) {
	switch kind {
	case "", "none":
		return Nop{}, nil
	case "csv":
		decisions := strings.TrimSuffix(tradesFile, ".csv") + "_decisions.csv"
		return NewCSV(tradesFile, decisions)
	case "sqlite":
		return NewSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", kind)
	}
}
