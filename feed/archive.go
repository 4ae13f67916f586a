package feed

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ulikunitz/xz/lzma"

	"github.com/mkrein/tradegate/market"
)

// tickRecordSize is the fixed on-disk size of one archived tick:
// millisecond offset, ask, bid (scaled uint32) and two float32 volumes,
// all big endian.
const tickRecordSize = 20

// ArchiveTick is one decoded tick from an hour archive.
type ArchiveTick struct {
	Time   time.Time
	Bid    float64
	Ask    float64
	Volume float64
}

// ReadTickArchive decodes an LZMA-compressed hour file of ticks. hour
// is the start of the archived hour; scale converts the integer price
// representation (1e-5 for 5-digit FX symbols).
func ReadTickArchive(r io.Reader, hour time.Time, scale float64) ([]ArchiveTick, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open tick archive: %w", err)
	}

	var ticks []ArchiveTick
	buf := make([]byte, tickRecordSize)
	for {
		_, err := io.ReadFull(lr, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tick record %d: %w", len(ticks), err)
		}

		ms := binary.BigEndian.Uint32(buf[0:4])
		ask := binary.BigEndian.Uint32(buf[4:8])
		bid := binary.BigEndian.Uint32(buf[8:12])
		askVol := math.Float32frombits(binary.BigEndian.Uint32(buf[12:16]))
		bidVol := math.Float32frombits(binary.BigEndian.Uint32(buf[16:20]))

		ticks = append(ticks, ArchiveTick{
			Time:   hour.Add(time.Duration(ms) * time.Millisecond),
			Bid:    float64(bid) * scale,
			Ask:    float64(ask) * scale,
			Volume: float64(askVol) + float64(bidVol),
		})
	}
	return ticks, nil
}

// LoadTickArchive reads one .bi5 hour file from disk.
func LoadTickArchive(path string, hour time.Time, scale float64) ([]ArchiveTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTickArchive(f, hour, scale)
}

// AggregateTicks folds ticks into bid-price candles of the given
// duration. Ticks must be in time order; empty intervals produce no
// candle.
func AggregateTicks(ticks []ArchiveTick, interval time.Duration) []market.Candle {
	if len(ticks) == 0 || interval <= 0 {
		return nil
	}

	var candles []market.Candle
	var cur *market.Candle
	var bucket time.Time

	for _, tk := range ticks {
		b := tk.Time.Truncate(interval)
		if cur == nil || !b.Equal(bucket) {
			if cur != nil {
				candles = append(candles, *cur)
			}
			bucket = b
			cur = &market.Candle{
				Time:   b,
				Open:   tk.Bid,
				High:   tk.Bid,
				Low:    tk.Bid,
				Close:  tk.Bid,
				Volume: tk.Volume,
			}
			continue
		}

		if tk.Bid > cur.High {
			cur.High = tk.Bid
		}
		if tk.Bid < cur.Low {
			cur.Low = tk.Bid
		}
		cur.Close = tk.Bid
		cur.Volume += tk.Volume
	}
	candles = append(candles, *cur)
	return candles
}
