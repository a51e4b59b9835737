package indicator

import "chartdata/internal/model"

// RSI computes the Relative Strength Index using Wilder's smoothing method.
// Requires at least period+1 candles (period deltas to seed the averages).
// The zero-loss case is guarded with RS=100 so the output stays in [0,100]
// and never produces NaN or Inf. Output length is len(candles) - period.
func RSI(candles []model.Candle, period int) []model.IndicatorValue {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}

	// Seed averages over the first period close-to-close deltas.
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		delta := candles[i].Close - candles[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]model.IndicatorValue, 0, len(candles)-period)
	out = append(out, model.IndicatorValue{TS: candles[period].TS, Value: rsiFrom(avgGain, avgLoss)})

	p := float64(period)
	for i := period + 1; i < len(candles); i++ {
		delta := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		// Wilder smoothing: avg = (avg*(period-1) + new) / period
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, model.IndicatorValue{TS: candles[i].TS, Value: rsiFrom(avgGain, avgLoss)})
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	rs := 100.0 // zero-loss guard
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - 100.0/(1.0+rs)
}
