package market

// Window is the most recent slice of candles handed to the pipeline each
// tick. The feed owns the backing array; consumers must not mutate it.
type Window []Candle

// Last returns the most recent candle. Callers must check Len first.
func (w Window) Last() Candle {
	return w[len(w)-1]
}

func (w Window) Len() int {
	return len(w)
}

// Returns computes simple close-to-close returns over the window,
// newest last. A window of n candles yields n-1 returns.
func (w Window) Returns() []float64 {
	if len(w) < 2 {
		return nil
	}
	out := make([]float64, 0, len(w)-1)
	for i := 1; i < len(w); i++ {
		prev := w[i-1].Close
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (w[i].Close-prev)/prev)
	}
	return out
}
