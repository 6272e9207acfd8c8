package features

import (
	"math"

	"crypto-price-lab/internal/timeseries"
)

// Technical indicator parameters used by the windowed lineage.
const (
	smaWindow       = 10
	rsiWindow       = 14
	macdShortWindow = 12
	macdLongWindow  = 26
	macdSignalSpan  = 9
)

// AppendIndicators derives SMA, RSI, MACD and the MACD signal line for every
// token column and appends them as new columns named <token>_SMA, <token>_RSI,
// <token>_MACD and <token>_Signal. Only the windowed lineage consumes these.
func AppendIndicators(m *timeseries.PriceMatrix) {
	base := make([]string, len(m.Tokens))
	copy(base, m.Tokens)

	for _, tok := range base {
		col, _ := m.Column(tok)

		m.SetColumn(tok+"_SMA", SMA(col, smaWindow))
		m.SetColumn(tok+"_RSI", RSI(col, rsiWindow))

		macd, signal := MACD(col, macdShortWindow, macdLongWindow, macdSignalSpan)
		m.SetColumn(tok+"_MACD", macd)
		m.SetColumn(tok+"_Signal", signal)
	}
}

// SMA returns the simple moving average over a trailing window.
func SMA(col []float64, window int) []float64 {
	return rollingMean(col, window)
}

// RSI returns the relative strength index over a trailing window, computed
// from rolling means of up-moves and down-moves.
func RSI(col []float64, window int) []float64 {
	n := len(col)
	ups := make([]float64, n)
	downs := make([]float64, n)
	ups[0] = math.NaN()
	downs[0] = math.NaN()
	for i := 1; i < n; i++ {
		delta := col[i] - col[i-1]
		if delta > 0 {
			ups[i] = delta
			downs[i] = 0
		} else {
			ups[i] = 0
			downs[i] = -delta
		}
	}

	meanUp := rollingMean(ups, window)
	meanDown := rollingMean(downs, window)

	out := make([]float64, n)
	for i := range out {
		rs := meanUp[i] / meanDown[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD returns the moving average convergence/divergence line and its signal
// line: EMA(short) − EMA(long), and EMA(signalSpan) of that difference.
func MACD(col []float64, short, long, signalSpan int) (macd, signal []float64) {
	shortEMA := EMA(col, short)
	longEMA := EMA(col, long)

	macd = make([]float64, len(col))
	for i := range macd {
		macd[i] = shortEMA[i] - longEMA[i]
	}
	signal = EMA(macd, signalSpan)
	return macd, signal
}

// EMA returns the exponential moving average with alpha = 2/(span+1), seeded
// from the first value.
func EMA(col []float64, span int) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = col[0]
	for i := 1; i < len(col); i++ {
		if math.IsNaN(out[i-1]) {
			out[i] = col[i]
			continue
		}
		out[i] = alpha*col[i] + (1-alpha)*out[i-1]
	}
	return out
}
