package cache

import (
	"context"
	"testing"
	"time"

	"chartdata/internal/model"
)

func testKey(symbol, resolution string) CandleKey {
	return CandleKey{Symbol: symbol, Resolution: resolution, From: 1000, To: 2000}
}

func TestMemory_SetGetBeforeTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	meta := model.SymbolMeta{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Currency: "USD", Type: "stock"}
	if err := m.SetSymbol(ctx, "AAPL", meta, time.Minute); err != nil {
		t.Fatalf("SetSymbol: %v", err)
	}

	got, ok, err := m.GetSymbol(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetSymbol: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit before TTL")
	}
	if got != meta {
		t.Errorf("GetSymbol: got %+v, want %+v", got, meta)
	}
}

func TestMemory_LazyExpiryOnRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	m.SetQuote(ctx, "AAPL", model.Quote{Symbol: "AAPL", Price: 190.5}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok, err := m.GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if ok {
		t.Error("expected expired entry to read as absent")
	}
}

func TestMemory_DeleteCandlesByResolution(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	resp := model.CandleResponse{Symbol: "AAPL"}
	m.SetCandles(ctx, testKey("AAPL", "1m"), resp, time.Minute)
	m.SetCandles(ctx, testKey("AAPL", "5m"), resp, time.Minute)
	m.SetCandles(ctx, testKey("MSFT", "1m"), resp, time.Minute)

	if err := m.DeleteCandles(ctx, "AAPL", "1m"); err != nil {
		t.Fatalf("DeleteCandles: %v", err)
	}
	if _, ok, _ := m.GetCandles(ctx, testKey("AAPL", "1m")); ok {
		t.Error("AAPL 1m should be deleted")
	}
	if _, ok, _ := m.GetCandles(ctx, testKey("AAPL", "5m")); !ok {
		t.Error("AAPL 5m should survive a resolution-qualified delete")
	}

	// Symbol-only delete removes every resolution.
	if err := m.DeleteCandles(ctx, "AAPL", ""); err != nil {
		t.Fatalf("DeleteCandles: %v", err)
	}
	if _, ok, _ := m.GetCandles(ctx, testKey("AAPL", "5m")); ok {
		t.Error("AAPL 5m should be gone after symbol-wide delete")
	}
	if _, ok, _ := m.GetCandles(ctx, testKey("MSFT", "1m")); !ok {
		t.Error("MSFT must not be touched")
	}
}

func TestMemory_InvalidateSymbol(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	m.SetSymbol(ctx, "AAPL", model.SymbolMeta{Symbol: "AAPL"}, time.Minute)
	m.SetQuote(ctx, "AAPL", model.Quote{Symbol: "AAPL"}, time.Minute)
	m.SetCandles(ctx, testKey("AAPL", "1m"), model.CandleResponse{}, time.Minute)
	m.SetSymbol(ctx, "MSFT", model.SymbolMeta{Symbol: "MSFT"}, time.Minute)

	if err := m.InvalidateSymbol(ctx, "AAPL"); err != nil {
		t.Fatalf("InvalidateSymbol: %v", err)
	}
	if _, ok, _ := m.GetSymbol(ctx, "AAPL"); ok {
		t.Error("symbol meta should be invalidated")
	}
	if _, ok, _ := m.GetQuote(ctx, "AAPL"); ok {
		t.Error("quote should be invalidated")
	}
	if _, ok, _ := m.GetCandles(ctx, testKey("AAPL", "1m")); ok {
		t.Error("candle ranges should be invalidated")
	}
	if _, ok, _ := m.GetSymbol(ctx, "MSFT"); !ok {
		t.Error("other symbols must survive")
	}
}

func TestMemory_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	m.SetSymbol(ctx, "AAPL", model.SymbolMeta{Symbol: "AAPL"}, time.Minute)
	m.SetQuote(ctx, "MSFT", model.Quote{Symbol: "MSFT"}, time.Minute)
	m.SetCandles(ctx, testKey("TSLA", "1m"), model.CandleResponse{}, time.Minute)

	if err := m.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	s, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.SymbolsCount != 0 || s.QuotesCount != 0 || s.CandleDataCount != 0 {
		t.Errorf("expected empty cache, got %+v", s)
	}
}

func TestMemory_StatsSweepsExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	m.SetSymbol(ctx, "AAPL", model.SymbolMeta{Symbol: "AAPL"}, time.Minute)
	m.SetQuote(ctx, "AAPL", model.Quote{Symbol: "AAPL", Price: 190}, time.Millisecond)
	m.SetQuote(ctx, "MSFT", model.Quote{Symbol: "MSFT", Price: 410}, time.Minute)
	time.Sleep(5 * time.Millisecond)

	s, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.SymbolsCount != 1 {
		t.Errorf("SymbolsCount: got %d, want 1", s.SymbolsCount)
	}
	if s.QuotesCount != 1 {
		t.Errorf("QuotesCount: got %d, want 1 (expired entry must be swept)", s.QuotesCount)
	}
	if s.MemoryUsage <= 0 {
		t.Errorf("MemoryUsage: got %d, want > 0", s.MemoryUsage)
	}
}

func TestMemory_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	m.SetQuote(ctx, "AAPL", model.Quote{Symbol: "AAPL", Price: 100}, time.Minute)
	m.SetQuote(ctx, "AAPL", model.Quote{Symbol: "AAPL", Price: 200}, time.Minute)

	q, ok, _ := m.GetQuote(ctx, "AAPL")
	if !ok || q.Price != 200 {
		t.Errorf("expected overwritten quote with price 200, got ok=%v price=%v", ok, q.Price)
	}

	s, _ := m.Stats(ctx)
	if s.QuotesCount != 1 {
		t.Errorf("QuotesCount after overwrite: got %d, want 1", s.QuotesCount)
	}
}
