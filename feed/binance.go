package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mkrein/tradegate/market"
)

const (
	binanceWSBase = "wss://stream.binance.com:9443/ws"

	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

// klineEvent is the envelope of one kline stream message.
type klineEvent struct {
	EventType string       `json:"e"`
	Symbol    string       `json:"s"`
	Kline     klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

func (k klinePayload) toCandle() (market.Candle, error) {
	var vals [5]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i] = v
	}
	return market.Candle{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// BinanceKlineFeed streams closed klines over a websocket and keeps a
// bounded in-memory history. Equity and point value are fixed by the
// caller since the feed is exchange data only.
type BinanceKlineFeed struct {
	symbol     string
	interval   string
	maxBars    int
	equity     float64
	pointValue float64
	log        *zap.Logger

	mu      sync.Mutex
	candles []market.Candle
}

// NewBinanceKlineFeed creates a feed for symbol (e.g. BTCUSDT) at the
// given kline interval (e.g. "1m"). Run must be started for data to
// flow.
func NewBinanceKlineFeed(symbol, interval string, maxBars int, equity, pointValue float64, log *zap.Logger) *BinanceKlineFeed {
	if log == nil {
		log = zap.NewNop()
	}
	return &BinanceKlineFeed{
		symbol:     strings.ToUpper(symbol),
		interval:   interval,
		maxBars:    maxBars,
		equity:     equity,
		pointValue: pointValue,
		log:        log,
	}
}

func (f *BinanceKlineFeed) Symbol() string         { return f.symbol }
func (f *BinanceKlineFeed) GetEquity() float64     { return f.equity }
func (f *BinanceKlineFeed) GetPointValue() float64 { return f.pointValue }

func (f *BinanceKlineFeed) GetData() (market.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.candles) == 0 {
		return nil, fmt.Errorf("binance feed %s: no klines received yet", f.symbol)
	}
	out := make(market.Window, len(f.candles))
	copy(out, f.candles)
	return out, nil
}

// Run connects and pumps klines until ctx is cancelled, reconnecting
// on connection loss.
func (f *BinanceKlineFeed) Run(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s@kline_%s", binanceWSBase, strings.ToLower(f.symbol), f.interval)

	for {
		if err := f.pump(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn("kline stream dropped",
				zap.String("symbol", f.symbol),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *BinanceKlineFeed) pump(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	f.log.Info("kline stream connected",
		zap.String("symbol", f.symbol),
		zap.String("interval", f.interval),
	)

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPingHandler(func(payload string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		deadline := time.Now().Add(wsWriteTimeout)
		return conn.WriteControl(websocket.PongMessage, []byte(payload), deadline)
	})

	// close the socket when the context ends so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var ev klineEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			f.log.Warn("bad kline message", zap.Error(err))
			continue
		}
		if ev.EventType != "kline" || !ev.Kline.Closed {
			continue
		}

		candle, err := ev.Kline.toCandle()
		if err != nil {
			f.log.Warn("bad kline payload", zap.Error(err))
			continue
		}
		f.append(candle)
	}
}

func (f *BinanceKlineFeed) append(c market.Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.candles = append(f.candles, c)
	if f.maxBars > 0 && len(f.candles) > f.maxBars {
		f.candles = f.candles[1:]
	}
}
