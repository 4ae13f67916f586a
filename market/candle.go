package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data
// for one bar of the feed, plus traded volume.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	time.Time
	Volume float64
}

// Range returns the high-low span of the bar.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Typical returns the typical price (H+L+C)/3 used by VWAP.
func (c Candle) Typical() float64 {
	return (c.High + c.Low + c.Close) / 3.0
}
