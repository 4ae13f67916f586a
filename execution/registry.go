package execution

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mkrein/tradegate/internal/id"
)

// Record statuses.
const (
	StatusCreated  = "CREATED"
	StatusSent     = "SENT"
	StatusFilled   = "FILLED"
	StatusRejected = "REJECTED"
)

const priceEpsilon = 1e-6

// Record is one execution attempt with full lifecycle visibility.
// Owned exclusively by the Registry.
type Record struct {
	ID           string
	Symbol       string
	Side         string
	Size         float64
	LimitPrice   float64
	CreatedAt    time.Time
	Status       string
	OrderID      string
	FillPrice    float64
	RejectReason string
	LatencyMs    float64
}

// Registry is a bounded, append-only audit log of order intents keyed
// by ULID. When the capacity ceiling is exceeded the oldest records by
// timestamp are evicted first, regardless of status.
type Registry struct {
	mu         sync.Mutex
	maxRecords int
	records    map[string]*Record
	now        func() time.Time
}

// NewRegistry returns a registry bounded to maxRecords entries.
func NewRegistry(maxRecords int) *Registry {
	return &Registry{
		maxRecords: maxRecords,
		records:    make(map[string]*Record),
		now:        time.Now,
	}
}

// Create registers a new CREATED record for the intent and returns its id.
func (r *Registry) Create(intent Intent) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rid := id.New()
	r.records[rid] = &Record{
		ID:         rid,
		Symbol:     intent.Symbol,
		Side:       intent.Side,
		Size:       intent.Size,
		LimitPrice: intent.LimitPrice,
		CreatedAt:  r.now(),
		Status:     StatusCreated,
	}
	r.trim()
	return rid
}

// HasSimilar reports whether an active (CREATED or SENT) record matches
// the intent's symbol, side and limit price within priceEpsilon.
func (r *Registry) HasSimilar(intent Intent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Status != StatusCreated && rec.Status != StatusSent {
			continue
		}
		if rec.Symbol == intent.Symbol &&
			rec.Side == intent.Side &&
			math.Abs(rec.LimitPrice-intent.LimitPrice) < priceEpsilon {
			return true
		}
	}
	return false
}

// MarkSent transitions a record to SENT. No-op for unknown ids.
func (r *Registry) MarkSent(recordID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[recordID]; ok {
		rec.Status = StatusSent
	}
}

// MarkFilled transitions a record to FILLED with fill details.
func (r *Registry) MarkFilled(recordID, orderID string, fillPrice float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[recordID]; ok {
		rec.Status = StatusFilled
		rec.OrderID = orderID
		rec.FillPrice = fillPrice
		rec.LatencyMs = float64(r.now().Sub(rec.CreatedAt)) / float64(time.Millisecond)
	}
}

// MarkRejected transitions a record to REJECTED with the adapter reason.
func (r *Registry) MarkRejected(recordID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[recordID]; ok {
		rec.Status = StatusRejected
		rec.RejectReason = reason
		rec.LatencyMs = float64(r.now().Sub(rec.CreatedAt)) / float64(time.Millisecond)
	}
}

// Get returns a copy of a record.
func (r *Registry) Get(recordID string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// All returns copies of every record, oldest first.
func (r *Registry) All() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Stats summarizes the registry for logging and telemetry.
type Stats struct {
	Total       int
	Filled      int
	Rejected    int
	FillRatio   float64
	RejectRatio float64
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{Total: len(r.records)}
	for _, rec := range r.records {
		switch rec.Status {
		case StatusFilled:
			s.Filled++
		case StatusRejected:
			s.Rejected++
		}
	}
	if s.Total > 0 {
		s.FillRatio = float64(s.Filled) / float64(s.Total)
		s.RejectRatio = float64(s.Rejected) / float64(s.Total)
	}
	return s
}

// trim evicts oldest-by-timestamp records once the ceiling is exceeded.
// Caller holds the lock.
func (r *Registry) trim() {
	overflow := len(r.records) - r.maxRecords
	if overflow <= 0 {
		return
	}

	ids := make([]string, 0, len(r.records))
	for rid := range r.records {
		ids = append(ids, rid)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.records[ids[i]], r.records[ids[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID // ULIDs are time-ordered; stable tiebreak
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for _, rid := range ids[:overflow] {
		delete(r.records, rid)
	}
}
