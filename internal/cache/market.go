package cache

import (
	"context"
	"time"

	"chartdata/internal/metrics"
	"chartdata/internal/model"
)

// SymbolRepo is the persistence fallback for symbol metadata.
type SymbolRepo interface {
	GetSymbol(ctx context.Context, symbol string) (model.SymbolMeta, error)
}

// QuoteRepo is the persistence fallback for latest quotes.
type QuoteRepo interface {
	LatestQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// CandleRepo is the persistence fallback for candle ranges. Results are
// ascending by timestamp and capped at limit.
type CandleRepo interface {
	Candles(ctx context.Context, symbol, resolution string, from, to int64, limit int) ([]model.Candle, error)
}

// Market is the read-through layer over a Store plus the persistence
// fallback repositories. A miss or expired entry falls through to the repo
// synchronously; the fetched value is returned as-is and NOT written back —
// re-priming the cache is the caller's explicit second step. Fallback
// errors propagate unchanged, without retry.
type Market struct {
	store   Store
	symbols SymbolRepo
	quotes  QuoteRepo
	candles CandleRepo
	ttl     TTLConfig
	prom    *metrics.Metrics // optional
}

// NewMarket wires a cache store to its fallback repositories. prom may be
// nil (tests run without a registry).
func NewMarket(store Store, symbols SymbolRepo, quotes QuoteRepo, candles CandleRepo, ttl TTLConfig, prom *metrics.Metrics) *Market {
	return &Market{
		store:   store,
		symbols: symbols,
		quotes:  quotes,
		candles: candles,
		ttl:     ttl,
		prom:    prom,
	}
}

// GetSymbol returns symbol metadata, cached when live. The second return
// reports whether the value came from the cache.
func (m *Market) GetSymbol(ctx context.Context, symbol string) (model.SymbolMeta, bool, error) {
	meta, ok, err := m.store.GetSymbol(ctx, symbol)
	if err != nil {
		return model.SymbolMeta{}, false, err
	}
	if ok {
		m.hit("symbol")
		return meta, true, nil
	}
	m.miss("symbol")

	start := time.Now()
	meta, err = m.symbols.GetSymbol(ctx, symbol)
	m.fallback(start)
	if err != nil {
		return model.SymbolMeta{}, false, err
	}
	return meta, false, nil
}

// GetQuote returns the latest quote, cached when live.
func (m *Market) GetQuote(ctx context.Context, symbol string) (model.Quote, bool, error) {
	quote, ok, err := m.store.GetQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, false, err
	}
	if ok {
		m.hit("quote")
		return quote, true, nil
	}
	m.miss("quote")

	start := time.Now()
	quote, err = m.quotes.LatestQuote(ctx, symbol)
	m.fallback(start)
	if err != nil {
		return model.Quote{}, false, err
	}
	return quote, false, nil
}

// GetCandles returns the candle range for the key, cached when live.
func (m *Market) GetCandles(ctx context.Context, key CandleKey, limit int) (model.CandleResponse, bool, error) {
	resp, ok, err := m.store.GetCandles(ctx, key)
	if err != nil {
		return model.CandleResponse{}, false, err
	}
	if ok {
		m.hit("candles")
		return resp, true, nil
	}
	m.miss("candles")

	start := time.Now()
	candles, err := m.candles.Candles(ctx, key.Symbol, key.Resolution, key.From, key.To, limit)
	m.fallback(start)
	if err != nil {
		return model.CandleResponse{}, false, err
	}
	if candles == nil {
		candles = []model.Candle{}
	}
	return model.CandleResponse{
		Symbol:     key.Symbol,
		Resolution: key.Resolution,
		From:       key.From,
		To:         key.To,
		Candles:    candles,
	}, false, nil
}

// SetSymbol primes the symbol cache with the configured TTL.
func (m *Market) SetSymbol(ctx context.Context, meta model.SymbolMeta) error {
	return m.store.SetSymbol(ctx, meta.Symbol, meta, m.ttl.Symbol)
}

// SetQuote primes the quote cache with the configured TTL.
func (m *Market) SetQuote(ctx context.Context, quote model.Quote) error {
	return m.store.SetQuote(ctx, quote.Symbol, quote, m.ttl.Quote)
}

// SetCandles primes the candle-range cache with the configured TTL.
func (m *Market) SetCandles(ctx context.Context, key CandleKey, resp model.CandleResponse) error {
	return m.store.SetCandles(ctx, key, resp, m.ttl.Candles)
}

func (m *Market) DeleteSymbol(ctx context.Context, symbol string) error {
	return m.store.DeleteSymbol(ctx, symbol)
}

func (m *Market) DeleteQuote(ctx context.Context, symbol string) error {
	return m.store.DeleteQuote(ctx, symbol)
}

func (m *Market) DeleteCandles(ctx context.Context, symbol, resolution string) error {
	return m.store.DeleteCandles(ctx, symbol, resolution)
}

func (m *Market) InvalidateSymbol(ctx context.Context, symbol string) error {
	return m.store.InvalidateSymbol(ctx, symbol)
}

func (m *Market) InvalidateAll(ctx context.Context) error {
	return m.store.InvalidateAll(ctx)
}

func (m *Market) Stats(ctx context.Context) (Stats, error) {
	return m.store.Stats(ctx)
}

func (m *Market) Close() error {
	return m.store.Close()
}

func (m *Market) hit(kind string) {
	if m.prom != nil {
		m.prom.CacheHits.WithLabelValues(kind).Inc()
	}
}

func (m *Market) miss(kind string) {
	if m.prom != nil {
		m.prom.CacheMisses.WithLabelValues(kind).Inc()
	}
}

func (m *Market) fallback(start time.Time) {
	if m.prom != nil {
		m.prom.FallbackDur.Observe(time.Since(start).Seconds())
	}
}
