package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/mkrein/tradegate/execution"
)

type CSVJournal struct {
	orders    *csv.Writer
	decisions *csv.Writer
	of, df    *os.File
}

func NewCSV(ordersPath, decisionsPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(decisionsPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	dw := csv.NewWriter(df)

	if err := ow.Write([]string{"record_id", "symbol", "side", "size", "limit_price", "created_at", "status", "order_id", "fill_price", "reject_reason", "latency_ms"}); err != nil {
		return nil, err
	}
	if err := dw.Write([]string{"time", "symbol", "regime", "stress", "accept", "confidence", "styles", "explanation"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{orders: ow, decisions: dw, of: of, df: df}, nil
}

func (j *CSVJournal) RecordOrder(r execution.Record) error {
	err := j.orders.Write([]string{
		r.ID,
		r.Symbol,
		r.Side,
		f(r.Size),
		f(r.LimitPrice),
		r.CreatedAt.Format(time.RFC3339),
		r.Status,
		r.OrderID,
		f(r.FillPrice),
		r.RejectReason,
		f(r.LatencyMs),
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordDecision(d DecisionEntry) error {
	err := j.decisions.Write([]string{
		d.Time.Format(time.RFC3339),
		d.Symbol,
		d.Regime,
		f(d.Stress),
		strconv.FormatBool(d.Accept),
		f(d.Confidence),
		d.Styles,
		d.Explanation,
	})
	if err != nil {
		return err
	}
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.decisions.Flush()
	if err := j.decisions.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	return j.df.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
