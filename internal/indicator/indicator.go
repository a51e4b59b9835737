// Package indicator provides technical indicator calculations over candle data.
//
// All calculators are pure functions over an ordered candle series: no shared
// state, deterministic output, safe to call concurrently. A series shorter
// than the indicator's minimum history yields an empty result, never an error.
package indicator

import "chartdata/internal/model"

// emaOverValues applies the EMA recurrence to an already-computed value
// series (used for the MACD signal line). Same seed and multiplier rules
// as EMA over candles.
func emaOverValues(values []model.IndicatorValue, period int) []model.IndicatorValue {
	if period <= 0 || len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i].Value
	}
	ema := sum / float64(period)

	out := make([]model.IndicatorValue, 0, len(values)-period+1)
	out = append(out, model.IndicatorValue{TS: values[period-1].TS, Value: ema})
	for i := period; i < len(values); i++ {
		ema = (values[i].Value-ema)*k + ema
		out = append(out, model.IndicatorValue{TS: values[i].TS, Value: ema})
	}
	return out
}
