package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chartdata/internal/model"
)

// entry is one cached value with its expiry deadline and an approximate
// JSON-encoded size for the memory usage estimate.
type entry[T any] struct {
	value     T
	expiresAt time.Time
	size      int64
}

func (e entry[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Memory is the in-process Store backend: three independent maps guarded by
// one RWMutex, with lazy expiry — an expired entry is dropped the moment any
// read touches it, or during the Stats sweep.
type Memory struct {
	mu      sync.RWMutex
	symbols map[string]entry[model.SymbolMeta]
	quotes  map[string]entry[model.Quote]
	candles map[CandleKey]entry[model.CandleResponse]
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		symbols: make(map[string]entry[model.SymbolMeta]),
		quotes:  make(map[string]entry[model.Quote]),
		candles: make(map[CandleKey]entry[model.CandleResponse]),
	}
}

func (m *Memory) GetSymbol(_ context.Context, symbol string) (model.SymbolMeta, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.symbols[symbol]
	if !ok {
		return model.SymbolMeta{}, false, nil
	}
	if e.expired(time.Now()) {
		delete(m.symbols, symbol)
		return model.SymbolMeta{}, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) SetSymbol(_ context.Context, symbol string, meta model.SymbolMeta, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[symbol] = newEntry(meta, ttl)
	return nil
}

func (m *Memory) DeleteSymbol(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.symbols, symbol)
	return nil
}

func (m *Memory) GetQuote(_ context.Context, symbol string) (model.Quote, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.quotes[symbol]
	if !ok {
		return model.Quote{}, false, nil
	}
	if e.expired(time.Now()) {
		delete(m.quotes, symbol)
		return model.Quote{}, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) SetQuote(_ context.Context, symbol string, quote model.Quote, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = newEntry(quote, ttl)
	return nil
}

func (m *Memory) DeleteQuote(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quotes, symbol)
	return nil
}

func (m *Memory) GetCandles(_ context.Context, key CandleKey) (model.CandleResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.candles[key]
	if !ok {
		return model.CandleResponse{}, false, nil
	}
	if e.expired(time.Now()) {
		delete(m.candles, key)
		return model.CandleResponse{}, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) SetCandles(_ context.Context, key CandleKey, resp model.CandleResponse, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candles[key] = newEntry(resp, ttl)
	return nil
}

func (m *Memory) DeleteCandles(_ context.Context, symbol, resolution string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.candles {
		if k.Symbol != symbol {
			continue
		}
		if resolution != "" && k.Resolution != resolution {
			continue
		}
		delete(m.candles, k)
	}
	return nil
}

func (m *Memory) InvalidateSymbol(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.symbols, symbol)
	delete(m.quotes, symbol)
	for k := range m.candles {
		if k.Symbol == symbol {
			delete(m.candles, k)
		}
	}
	return nil
}

func (m *Memory) InvalidateAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = make(map[string]entry[model.SymbolMeta])
	m.quotes = make(map[string]entry[model.Quote])
	m.candles = make(map[CandleKey]entry[model.CandleResponse])
	return nil
}

// Stats sweeps all three maps, evicting expired entries so the counts never
// overstate live entries, and reports the summed size estimates.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var s Stats
	for k, e := range m.symbols {
		if e.expired(now) {
			delete(m.symbols, k)
			continue
		}
		s.SymbolsCount++
		s.MemoryUsage += e.size
	}
	for k, e := range m.quotes {
		if e.expired(now) {
			delete(m.quotes, k)
			continue
		}
		s.QuotesCount++
		s.MemoryUsage += e.size
	}
	for k, e := range m.candles {
		if e.expired(now) {
			delete(m.candles, k)
			continue
		}
		s.CandleDataCount++
		s.MemoryUsage += e.size
	}
	return s, nil
}

func (m *Memory) Close() error {
	return m.InvalidateAll(context.Background())
}

func newEntry[T any](value T, ttl time.Duration) entry[T] {
	b, _ := json.Marshal(value)
	return entry[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		size:      int64(len(b)),
	}
}
