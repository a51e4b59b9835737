package indicator

import "chartdata/internal/model"

// EMA computes the Exponential Moving Average of close prices.
// The first emitted value is the SMA of the first period closes (the seed),
// timestamped at candle period-1. Subsequent values follow the recurrence
// ema = (close - prev) * k + prev with k = 2/(period+1).
func EMA(candles []model.Candle, period int) []model.IndicatorValue {
	if period <= 0 || len(candles) < period {
		return nil
	}
	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += candles[i].Close
	}
	ema := sum / float64(period)

	out := make([]model.IndicatorValue, 0, len(candles)-period+1)
	out = append(out, model.IndicatorValue{TS: candles[period-1].TS, Value: ema})
	for i := period; i < len(candles); i++ {
		ema = (candles[i].Close-ema)*k + ema
		out = append(out, model.IndicatorValue{TS: candles[i].TS, Value: ema})
	}
	return out
}
