package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"chartdata/internal/model"
)

const (
	symbolPrefix = "chartdata:sym:"
	quotePrefix  = "chartdata:quote:"
	candlePrefix = "chartdata:candles:"
)

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is the external Store backend. Values are JSON, TTLs are native
// Redis expirations, so the lazy expiry sweep is Redis's own; Stats only
// counts keys that are still live.
type Redis struct {
	client *goredis.Client
}

// NewRedis connects to Redis and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) GetSymbol(ctx context.Context, symbol string) (model.SymbolMeta, bool, error) {
	var meta model.SymbolMeta
	ok, err := r.get(ctx, symbolPrefix+symbol, &meta)
	return meta, ok, err
}

func (r *Redis) SetSymbol(ctx context.Context, symbol string, meta model.SymbolMeta, ttl time.Duration) error {
	return r.set(ctx, symbolPrefix+symbol, meta, ttl)
}

func (r *Redis) DeleteSymbol(ctx context.Context, symbol string) error {
	return r.client.Del(ctx, symbolPrefix+symbol).Err()
}

func (r *Redis) GetQuote(ctx context.Context, symbol string) (model.Quote, bool, error) {
	var quote model.Quote
	ok, err := r.get(ctx, quotePrefix+symbol, &quote)
	return quote, ok, err
}

func (r *Redis) SetQuote(ctx context.Context, symbol string, quote model.Quote, ttl time.Duration) error {
	return r.set(ctx, quotePrefix+symbol, quote, ttl)
}

func (r *Redis) DeleteQuote(ctx context.Context, symbol string) error {
	return r.client.Del(ctx, quotePrefix+symbol).Err()
}

func (r *Redis) GetCandles(ctx context.Context, key CandleKey) (model.CandleResponse, bool, error) {
	var resp model.CandleResponse
	ok, err := r.get(ctx, candlePrefix+key.String(), &resp)
	return resp, ok, err
}

func (r *Redis) SetCandles(ctx context.Context, key CandleKey, resp model.CandleResponse, ttl time.Duration) error {
	return r.set(ctx, candlePrefix+key.String(), resp, ttl)
}

func (r *Redis) DeleteCandles(ctx context.Context, symbol, resolution string) error {
	pattern := candlePrefix + symbol + ":*"
	if resolution != "" {
		pattern = candlePrefix + symbol + ":" + resolution + ":*"
	}
	return r.deleteMatching(ctx, pattern)
}

func (r *Redis) InvalidateSymbol(ctx context.Context, symbol string) error {
	if err := r.client.Del(ctx, symbolPrefix+symbol, quotePrefix+symbol).Err(); err != nil {
		return err
	}
	return r.deleteMatching(ctx, candlePrefix+symbol+":*")
}

func (r *Redis) InvalidateAll(ctx context.Context) error {
	// Scoped to our prefixes rather than FLUSHDB so co-tenant keys survive.
	for _, pattern := range []string{symbolPrefix + "*", quotePrefix + "*", candlePrefix + "*"} {
		if err := r.deleteMatching(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var err error
	if s.SymbolsCount, err = r.countMatching(ctx, symbolPrefix+"*"); err != nil {
		return Stats{}, err
	}
	if s.QuotesCount, err = r.countMatching(ctx, quotePrefix+"*"); err != nil {
		return Stats{}, err
	}
	if s.CandleDataCount, err = r.countMatching(ctx, candlePrefix+"*"); err != nil {
		return Stats{}, err
	}
	s.MemoryUsage = r.usedMemory(ctx)
	return s, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (r *Redis) countMatching(ctx context.Context, pattern string) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	return n, nil
}

// usedMemory parses used_memory out of INFO memory. Best effort: a parse
// failure reports 0 rather than failing the stats call.
func (r *Redis) usedMemory(ctx context.Context) int64 {
	info, err := r.client.Info(ctx, "memory").Result()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(info, "\r\n") {
		if v, ok := strings.CutPrefix(line, "used_memory:"); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}
