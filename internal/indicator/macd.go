package indicator

import "chartdata/internal/model"

// MACDSeries bundles the three MACD output lines. The slices are always
// equal in length, right-aligned on the signal line.
type MACDSeries struct {
	MACD      []model.IndicatorValue `json:"macd"`
	Signal    []model.IndicatorValue `json:"signal"`
	Histogram []model.IndicatorValue `json:"histogram"`
}

// MACD computes the Moving Average Convergence Divergence:
// macd = EMA(fast) - EMA(slow), right-aligned on the shorter EMA;
// signal = EMA of the macd values; histogram = macd - signal.
// Insufficient data at any stage yields three empty lines.
func MACD(candles []model.Candle, fastPeriod, slowPeriod, signalPeriod int) MACDSeries {
	fast := EMA(candles, fastPeriod)
	slow := EMA(candles, slowPeriod)
	if len(fast) == 0 || len(slow) == 0 {
		return MACDSeries{}
	}

	// Right-align: match the last n points of each EMA index-for-index.
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	fast = fast[len(fast)-n:]
	slow = slow[len(slow)-n:]

	line := make([]model.IndicatorValue, n)
	for i := range line {
		line[i] = model.IndicatorValue{TS: slow[i].TS, Value: fast[i].Value - slow[i].Value}
	}

	signal := emaOverValues(line, signalPeriod)
	if len(signal) == 0 {
		return MACDSeries{}
	}

	// Trim the macd line to the signal's span so all three lines align.
	line = line[len(line)-len(signal):]
	hist := make([]model.IndicatorValue, len(signal))
	for i := range hist {
		hist[i] = model.IndicatorValue{TS: signal[i].TS, Value: line[i].Value - signal[i].Value}
	}

	return MACDSeries{MACD: line, Signal: signal, Histogram: hist}
}
