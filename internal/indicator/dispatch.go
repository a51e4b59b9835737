package indicator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chartdata/internal/model"
)

// ErrUnsupportedType is returned by Calculate for an unknown indicator type.
// It is the only hard failure in this package; short input data yields an
// empty result instead.
var ErrUnsupportedType = errors.New("unsupported indicator type")

// Default parameters per indicator type.
const (
	DefaultPeriod       = 20
	DefaultRSIPeriod    = 14
	DefaultFastPeriod   = 12
	DefaultSlowPeriod   = 26
	DefaultSignalPeriod = 9
	DefaultStdDevs      = 2.1
)

// Result is the envelope returned by Calculate. Exactly one shape is
// populated per indicator family: Values for single-line indicators
// (sma, ema, rsi, and the macd line by convention), Bands for bollinger.
// Parameters echoes the resolved parameter set, defaults included.
type Result struct {
	Type       string                 `json:"type"`
	Name       string                 `json:"name"`
	Parameters map[string]any         `json:"parameters"`
	Values     []model.IndicatorValue `json:"values"`
	Bands      *BollingerSeries       `json:"bands,omitempty"`
}

// Calculate dispatches an indicator request to the matching calculator,
// filling in per-type defaults for absent parameters. Unknown parameter
// keys are ignored. An unknown type returns ErrUnsupportedType.
func Calculate(typ string, candles []model.Candle, params map[string]any, name string) (*Result, error) {
	res := &Result{
		Type:   strings.ToLower(typ),
		Name:   name,
		Values: []model.IndicatorValue{},
	}

	switch res.Type {
	case "sma":
		period := intParam(params, "period", DefaultPeriod)
		res.Parameters = map[string]any{"period": period}
		if v := SMA(candles, period); v != nil {
			res.Values = v
		}

	case "ema":
		period := intParam(params, "period", DefaultPeriod)
		res.Parameters = map[string]any{"period": period}
		if v := EMA(candles, period); v != nil {
			res.Values = v
		}

	case "rsi":
		period := intParam(params, "period", DefaultRSIPeriod)
		res.Parameters = map[string]any{"period": period}
		if v := RSI(candles, period); v != nil {
			res.Values = v
		}

	case "macd":
		fast := intParam(params, "fastPeriod", DefaultFastPeriod)
		slow := intParam(params, "slowPeriod", DefaultSlowPeriod)
		signal := intParam(params, "signalPeriod", DefaultSignalPeriod)
		res.Parameters = map[string]any{
			"fastPeriod":   fast,
			"slowPeriod":   slow,
			"signalPeriod": signal,
		}
		// Only the MACD line is exposed; signal and histogram are computed
		// for alignment but not part of the single-line envelope.
		if m := MACD(candles, fast, slow, signal); m.MACD != nil {
			res.Values = m.MACD
		}

	case "bollinger":
		period := intParam(params, "period", DefaultPeriod)
		stdDevs := floatParam(params, "standardDeviations", DefaultStdDevs)
		res.Parameters = map[string]any{
			"period":             period,
			"standardDeviations": stdDevs,
		}
		bb := Bollinger(candles, period, stdDevs)
		res.Bands = &bb

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}

	return res, nil
}

// intParam reads an integer parameter from a loosely-typed parameter bag.
// JSON decoding yields float64 (or json.Number with UseNumber), so several
// numeric representations are accepted. Unusable values fall back to def.
func intParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		if n > 0 {
			return n
		}
	case int64:
		if n > 0 {
			return int(n)
		}
	case float64:
		if n > 0 {
			return int(n)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			return int(i)
		}
	}
	return def
}

// floatParam reads a float parameter, same conventions as intParam.
func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return n
		}
	case int:
		if n > 0 {
			return float64(n)
		}
	case int64:
		if n > 0 {
			return float64(n)
		}
	case json.Number:
		if f, err := n.Float64(); err == nil && f > 0 {
			return f
		}
	}
	return def
}
