package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr: got %q", cfg.ListenAddr)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Backend: got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.QuoteTTL >= cfg.Cache.CandleTTL || cfg.Cache.CandleTTL >= cfg.Cache.SymbolTTL {
		t.Errorf("TTL ordering: quote=%v candle=%v symbol=%v",
			cfg.Cache.QuoteTTL, cfg.Cache.CandleTTL, cfg.Cache.SymbolTTL)
	}
	if cfg.MaxCandles != 1000 {
		t.Errorf("MaxCandles: got %d", cfg.MaxCandles)
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
listen_addr: ":9999"
cache:
  backend: redis
  quote_ttl: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDIS_ADDR", "cachehost:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr: got %q", cfg.ListenAddr)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Backend: got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.QuoteTTL != 30*time.Second {
		t.Errorf("QuoteTTL: got %v", cfg.Cache.QuoteTTL)
	}
	if cfg.Cache.RedisAddr != "cachehost:6380" {
		t.Errorf("RedisAddr: got %q", cfg.Cache.RedisAddr)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  backend: memcached\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown cache backend")
	}
}
