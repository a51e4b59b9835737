package indicator

import "chartdata/internal/model"

// SMA computes the Simple Moving Average of close prices.
// Uses a rolling sum so the whole series is one pass.
// Output index i covers the trailing window ending at candle period-1+i;
// output length is len(candles) - period + 1.
func SMA(candles []model.Candle, period int) []model.IndicatorValue {
	if period <= 0 || len(candles) < period {
		return nil
	}

	out := make([]model.IndicatorValue, 0, len(candles)-period+1)
	sum := 0.0
	for i, c := range candles {
		sum += c.Close
		if i >= period {
			sum -= candles[i-period].Close
		}
		if i >= period-1 {
			out = append(out, model.IndicatorValue{TS: c.TS, Value: sum / float64(period)})
		}
	}
	return out
}
