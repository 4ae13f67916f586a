// Package feed supplies market data to the orchestrator: candle
// history, account equity and the instrument's point value.
package feed

import "github.com/mkrein/tradegate/market"

// MarketDataFeed is the data-side collaborator of the pipeline. GetData
// returns the most recent candles, oldest first; implementations decide
// how deep the history goes.
type MarketDataFeed interface {
	Symbol() string
	GetData() (market.Window, error)
	GetEquity() float64
	GetPointValue() float64
}
