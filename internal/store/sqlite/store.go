// Package sqlite is the persistence layer behind the market data cache:
// symbol metadata, latest quotes, and candle history. It serves as the
// synchronous fallback when a cache read misses.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"chartdata/internal/model"
)

// ErrNotFound is returned when a symbol, quote, or candle query matches
// nothing. Callers map it to their own missing-data handling.
var ErrNotFound = errors.New("not found")

// Store provides symbol, quote, and candle persistence over SQLite.
type Store struct {
	db *sqlx.DB
}

// New opens the database with WAL mode and bootstraps the schema.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS symbols (
			symbol   TEXT NOT NULL PRIMARY KEY,
			name     TEXT NOT NULL,
			exchange TEXT NOT NULL,
			currency TEXT NOT NULL,
			type     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS quotes (
			symbol         TEXT NOT NULL PRIMARY KEY,
			price          REAL NOT NULL,
			change         REAL NOT NULL,
			change_percent REAL NOT NULL,
			ts             INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS candles (
			symbol     TEXT    NOT NULL,
			resolution TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			open       REAL    NOT NULL,
			high       REAL    NOT NULL,
			low        REAL    NOT NULL,
			close      REAL    NOT NULL,
			volume     INTEGER NOT NULL,
			PRIMARY KEY (symbol, resolution, ts)
		);
	`)
	return err
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

// GetSymbol loads symbol metadata. Returns ErrNotFound for unknown symbols.
func (s *Store) GetSymbol(ctx context.Context, symbol string) (model.SymbolMeta, error) {
	var meta model.SymbolMeta
	err := s.db.GetContext(ctx, &meta,
		`SELECT symbol, name, exchange, currency, type FROM symbols WHERE symbol = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SymbolMeta{}, fmt.Errorf("symbol %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return model.SymbolMeta{}, fmt.Errorf("sqlite get symbol: %w", err)
	}
	return meta, nil
}

// UpsertSymbol inserts or replaces symbol metadata.
func (s *Store) UpsertSymbol(ctx context.Context, meta model.SymbolMeta) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO symbols (symbol, name, exchange, currency, type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			exchange = excluded.exchange,
			currency = excluded.currency,
			type = excluded.type
	`, meta.Symbol, meta.Name, meta.Exchange, meta.Currency, meta.Type)
	if err != nil {
		return fmt.Errorf("sqlite upsert symbol: %w", err)
	}
	return nil
}

// LatestQuote loads the most recent stored quote for a symbol.
func (s *Store) LatestQuote(ctx context.Context, symbol string) (model.Quote, error) {
	var quote model.Quote
	err := s.db.GetContext(ctx, &quote,
		`SELECT symbol, price, change, change_percent, ts FROM quotes WHERE symbol = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quote{}, fmt.Errorf("quote %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return model.Quote{}, fmt.Errorf("sqlite get quote: %w", err)
	}
	return quote, nil
}

// UpsertQuote stores the latest quote, one row per symbol.
func (s *Store) UpsertQuote(ctx context.Context, quote model.Quote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (symbol, price, change, change_percent, ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			change = excluded.change,
			change_percent = excluded.change_percent,
			ts = excluded.ts
	`, quote.Symbol, quote.Price, quote.Change, quote.ChangePercent, quote.TS)
	if err != nil {
		return fmt.Errorf("sqlite upsert quote: %w", err)
	}
	return nil
}

// Candles loads a candle range ascending by timestamp, capped at limit.
// An empty range is not an error: the caller decides what empty means.
func (s *Store) Candles(ctx context.Context, symbol, resolution string, from, to int64, limit int) ([]model.Candle, error) {
	var candles []model.Candle
	err := s.db.SelectContext(ctx, &candles, `
		SELECT symbol, resolution, ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND resolution = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
		LIMIT ?
	`, symbol, resolution, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query candles: %w", err)
	}
	return candles, nil
}

// InsertCandles upserts a candle batch in one transaction.
func (s *Store) InsertCandles(ctx context.Context, candles []model.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, resolution, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, resolution, ts) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare candles: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Symbol, c.Resolution, c.TS, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("sqlite insert candle %s/%s@%d: %w", c.Symbol, c.Resolution, c.TS, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
