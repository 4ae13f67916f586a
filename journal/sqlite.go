package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkrein/tradegate/execution"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(r execution.Record) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO orders
		(record_id, symbol, side, size, limit_price, created_at, status, order_id, fill_price, reject_reason, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Symbol, r.Side, r.Size, r.LimitPrice,
		r.CreatedAt, r.Status, r.OrderID, r.FillPrice, r.RejectReason, r.LatencyMs,
	)
	return err
}

func (j *SQLiteJournal) RecordDecision(d DecisionEntry) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(time, symbol, regime, stress, accept, confidence, styles, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Time, d.Symbol, d.Regime, d.Stress, d.Accept, d.Confidence, d.Styles, d.Explanation,
	)
	return err
}

// Orders returns the audit rows in creation order.
func (j *SQLiteJournal) Orders() ([]execution.Record, error) {
	rows, err := j.db.Query(`
		SELECT record_id, symbol, side, size, limit_price, created_at, status, order_id, fill_price, reject_reason, latency_ms
		FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []execution.Record
	for rows.Next() {
		var r execution.Record
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Side, &r.Size, &r.LimitPrice,
			&r.CreatedAt, &r.Status, &r.OrderID, &r.FillPrice, &r.RejectReason, &r.LatencyMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
