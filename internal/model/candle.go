package model

// Candle represents one OHLCV bar for a symbol at a fixed resolution.
// Timestamps are unix seconds; series are always ordered ascending by TS
// with no duplicate timestamps per (symbol, resolution).
type Candle struct {
	Symbol     string  `json:"symbol,omitempty" db:"symbol"`
	Resolution string  `json:"resolution,omitempty" db:"resolution"`
	TS         int64   `json:"ts" db:"ts"`
	Open       float64 `json:"open" db:"open"`
	High       float64 `json:"high" db:"high"`
	Low        float64 `json:"low" db:"low"`
	Close      float64 `json:"close" db:"close"`
	Volume     int64   `json:"volume" db:"volume"`
}

// CandleResponse is the result of a candle-range query and the unit cached
// per (symbol, resolution, from, to).
type CandleResponse struct {
	Symbol     string   `json:"symbol"`
	Resolution string   `json:"resolution"`
	From       int64    `json:"from"`
	To         int64    `json:"to"`
	Candles    []Candle `json:"candles"`
}
