package indicator

import (
	"errors"
	"testing"
)

func TestCalculate_UnknownType(t *testing.T) {
	candles := series(10, 12, 14, 16, 18)
	_, err := Calculate("bogus", candles, map[string]any{}, "X")
	if err == nil {
		t.Fatal("expected error for unknown indicator type")
	}
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("error is not ErrUnsupportedType: %v", err)
	}
}

func TestCalculate_SMA_WithDefaults(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	res, err := Calculate("sma", series(closes...), nil, "SMA 20")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Type != "sma" || res.Name != "SMA 20" {
		t.Errorf("envelope: type=%q name=%q", res.Type, res.Name)
	}
	if got := res.Parameters["period"]; got != DefaultPeriod {
		t.Errorf("default period: got %v, want %d", got, DefaultPeriod)
	}
	if len(res.Values) != 25-DefaultPeriod+1 {
		t.Errorf("values length: got %d, want %d", len(res.Values), 25-DefaultPeriod+1)
	}
	if res.Bands != nil {
		t.Error("sma result must not carry bands")
	}
}

func TestCalculate_ExplicitPeriod_JSONNumeric(t *testing.T) {
	candles := series(10, 12, 14, 16, 18, 20, 22, 24, 26, 28)
	// JSON-decoded parameter bags hold float64.
	res, err := Calculate("SMA", candles, map[string]any{"period": float64(5), "ignored": "x"}, "sma5")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(res.Values) != 6 {
		t.Fatalf("values length: got %d, want 6", len(res.Values))
	}
	assertClose(t, "sma5 first", res.Values[0].Value, 14, 1e-9)
}

func TestCalculate_InvalidParamFallsBackToDefault(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	res, err := Calculate("rsi", series(closes...), map[string]any{"period": "fourteen"}, "rsi")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got := res.Parameters["period"]; got != DefaultRSIPeriod {
		t.Errorf("period: got %v, want default %d", got, DefaultRSIPeriod)
	}
	if len(res.Values) != 30-DefaultRSIPeriod {
		t.Errorf("values length: got %d, want %d", len(res.Values), 30-DefaultRSIPeriod)
	}
}

func TestCalculate_InsufficientData_EmptyNotError(t *testing.T) {
	res, err := Calculate("ema", series(1, 2, 3), nil, "ema20")
	if err != nil {
		t.Fatalf("short history must not error: %v", err)
	}
	if res.Values == nil {
		t.Fatal("values must be an empty slice, not nil")
	}
	if len(res.Values) != 0 {
		t.Errorf("values length: got %d, want 0", len(res.Values))
	}
}

func TestCalculate_MACD_ExposesLineOnly(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	candles := series(closes...)
	res, err := Calculate("macd", candles, nil, "macd")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := MACD(candles, DefaultFastPeriod, DefaultSlowPeriod, DefaultSignalPeriod)
	if len(res.Values) != len(want.MACD) {
		t.Fatalf("values length: got %d, want %d", len(res.Values), len(want.MACD))
	}
	for i := range res.Values {
		assertClose(t, "macd line", res.Values[i].Value, want.MACD[i].Value, 1e-12)
	}
	if res.Bands != nil {
		t.Error("macd result must not carry bands")
	}
}

func TestCalculate_Bollinger_CarriesBands(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	res, err := Calculate("bollinger", series(closes...), map[string]any{"standardDeviations": 2.5}, "bb")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Bands == nil {
		t.Fatal("bollinger result must carry bands")
	}
	if got := res.Parameters["standardDeviations"]; got != 2.5 {
		t.Errorf("standardDeviations: got %v, want 2.5", got)
	}
	if len(res.Bands.Middle) != 25-DefaultPeriod+1 {
		t.Errorf("middle band length: got %d, want %d", len(res.Bands.Middle), 25-DefaultPeriod+1)
	}
	if len(res.Values) != 0 {
		t.Errorf("bollinger values must be empty, got %d", len(res.Values))
	}
}
