package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mkrein/tradegate/market"
)

// ReplayFeed replays recorded candles. Each Advance exposes one more
// bar, so a backtest driver steps it in lockstep with the pipeline.
type ReplayFeed struct {
	symbol     string
	candles    []market.Candle
	bars       int // max history returned per GetData
	cursor     int
	equity     float64
	pointValue float64
}

// NewReplayFeed wraps a candle series. bars caps the history window
// handed out per call; <= 0 means all bars up to the cursor.
func NewReplayFeed(symbol string, candles []market.Candle, bars int, equity, pointValue float64) *ReplayFeed {
	return &ReplayFeed{
		symbol:     symbol,
		candles:    candles,
		bars:       bars,
		equity:     equity,
		pointValue: pointValue,
	}
}

func (f *ReplayFeed) Symbol() string         { return f.symbol }
func (f *ReplayFeed) GetEquity() float64     { return f.equity }
func (f *ReplayFeed) GetPointValue() float64 { return f.pointValue }

// SetEquity lets the backtest driver mark equity to market.
func (f *ReplayFeed) SetEquity(equity float64) { f.equity = equity }

// Advance exposes the next bar. Returns false once the series is
// exhausted.
func (f *ReplayFeed) Advance() bool {
	if f.cursor >= len(f.candles) {
		return false
	}
	f.cursor++
	return true
}

// GetData returns the visible history, oldest first.
func (f *ReplayFeed) GetData() (market.Window, error) {
	if f.cursor == 0 {
		return nil, fmt.Errorf("replay feed %s: no bars exposed yet", f.symbol)
	}
	start := 0
	if f.bars > 0 && f.cursor > f.bars {
		start = f.cursor - f.bars
	}
	return market.Window(f.candles[start:f.cursor]), nil
}

// LoadCSV reads candles from a CSV file with columns
// time,open,high,low,close,volume. The time column accepts RFC3339
// or unix seconds; a header row is skipped automatically.
func LoadCSV(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses candle rows from r.
func ReadCSV(r io.Reader) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var candles []market.Candle
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(rec) < 6 {
			return nil, fmt.Errorf("csv line %d: expected 6 columns, got %d", line, len(rec))
		}
		if line == 1 && !isNumeric(rec[1]) {
			continue // header
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		var vals [5]float64
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d col %d: %w", line, i+2, err)
			}
			vals[i] = v
		}

		candles = append(candles, market.Candle{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
