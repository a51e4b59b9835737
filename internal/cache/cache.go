// Package cache implements the TTL-keyed market data cache: symbol metadata,
// latest quotes, and candle-range query results, each with independent
// expiry. Reads fall back to a backing persistence store on miss or expiry;
// fallback results are never re-cached implicitly — population is always an
// explicit Set by the caller.
package cache

import (
	"context"
	"fmt"
	"time"

	"chartdata/internal/model"
)

// Stats is the unified statistics view over all cached kinds. Counts only
// include live (unexpired) entries; computing them performs the lazy expiry
// sweep on backends that do not expire keys natively.
type Stats struct {
	SymbolsCount    int   `json:"symbolsCount"`
	QuotesCount     int   `json:"quotesCount"`
	CandleDataCount int   `json:"candleDataCount"`
	MemoryUsage     int64 `json:"memoryUsage"`
}

// CandleKey identifies one cached candle-range query.
type CandleKey struct {
	Symbol     string
	Resolution string
	From       int64
	To         int64
}

func (k CandleKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%d", k.Symbol, k.Resolution, k.From, k.To)
}

// Store is the TTL key-value contract shared by the in-memory and Redis
// backends. An entry whose TTL has elapsed is absent on every read path.
// Mutations are atomic per key; there is no cross-key transaction.
type Store interface {
	GetSymbol(ctx context.Context, symbol string) (model.SymbolMeta, bool, error)
	SetSymbol(ctx context.Context, symbol string, meta model.SymbolMeta, ttl time.Duration) error
	DeleteSymbol(ctx context.Context, symbol string) error

	GetQuote(ctx context.Context, symbol string) (model.Quote, bool, error)
	SetQuote(ctx context.Context, symbol string, quote model.Quote, ttl time.Duration) error
	DeleteQuote(ctx context.Context, symbol string) error

	GetCandles(ctx context.Context, key CandleKey) (model.CandleResponse, bool, error)
	SetCandles(ctx context.Context, key CandleKey, resp model.CandleResponse, ttl time.Duration) error
	// DeleteCandles removes cached ranges for a symbol. An empty resolution
	// removes every resolution's ranges for that symbol.
	DeleteCandles(ctx context.Context, symbol, resolution string) error

	// InvalidateSymbol removes the symbol's metadata, quote, and all candle
	// ranges in one call.
	InvalidateSymbol(ctx context.Context, symbol string) error
	// InvalidateAll clears every cached kind.
	InvalidateAll(ctx context.Context) error

	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// TTLConfig holds the per-kind default TTLs. Quotes expire fastest,
// symbol metadata slowest.
type TTLConfig struct {
	Symbol  time.Duration
	Quote   time.Duration
	Candles time.Duration
}

// DefaultTTLs returns the conventional per-kind TTLs.
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		Symbol:  time.Hour,
		Quote:   10 * time.Second,
		Candles: 5 * time.Minute,
	}
}
