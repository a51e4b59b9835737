package model

// IndicatorValue is one computed indicator point, timestamped from the
// aligned input candle.
type IndicatorValue struct {
	TS    int64   `json:"ts"`
	Value float64 `json:"value"`
}
