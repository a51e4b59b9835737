package indicator

import (
	"math"

	"chartdata/internal/model"
)

// BollingerSeries bundles the five Bollinger Band lines. All slices are
// parallel and aligned with the SMA middle band.
type BollingerSeries struct {
	Upper2 []model.IndicatorValue `json:"upper2"`
	Upper1 []model.IndicatorValue `json:"upper1"`
	Middle []model.IndicatorValue `json:"middle"`
	Lower1 []model.IndicatorValue `json:"lower1"`
	Lower2 []model.IndicatorValue `json:"lower2"`
}

// Bollinger computes Bollinger Bands: the middle band is SMA(period), the
// outer bands sit mult standard deviations away and the inner bands at half
// that distance. Deviation is the population standard deviation of the
// window, matching the SMA alignment exactly.
func Bollinger(candles []model.Candle, period int, mult float64) BollingerSeries {
	middle := SMA(candles, period)
	if len(middle) == 0 {
		return BollingerSeries{}
	}

	bb := BollingerSeries{
		Upper2: make([]model.IndicatorValue, len(middle)),
		Upper1: make([]model.IndicatorValue, len(middle)),
		Middle: middle,
		Lower1: make([]model.IndicatorValue, len(middle)),
		Lower2: make([]model.IndicatorValue, len(middle)),
	}

	for i, m := range middle {
		// Window of closes ending at candle period-1+i.
		variance := 0.0
		for j := i; j < i+period; j++ {
			d := candles[j].Close - m.Value
			variance += d * d
		}
		stdDev := math.Sqrt(variance / float64(period))

		bb.Upper2[i] = model.IndicatorValue{TS: m.TS, Value: m.Value + mult*stdDev}
		bb.Upper1[i] = model.IndicatorValue{TS: m.TS, Value: m.Value + (mult/2)*stdDev}
		bb.Lower1[i] = model.IndicatorValue{TS: m.TS, Value: m.Value - (mult/2)*stdDev}
		bb.Lower2[i] = model.IndicatorValue{TS: m.TS, Value: m.Value - mult*stdDev}
	}
	return bb
}
