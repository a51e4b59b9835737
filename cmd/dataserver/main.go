package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"chartdata/config"
	"chartdata/internal/api"
	"chartdata/internal/cache"
	"chartdata/internal/logger"
	"chartdata/internal/metrics"
	"chartdata/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	// .env is optional; env vars override the YAML file either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init("dataserver", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	// ---- Persistence ----
	os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755)
	store, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		log.Error("sqlite init failed", "path", cfg.Database.SQLitePath, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("sqlite opened", "path", cfg.Database.SQLitePath)

	// ---- Cache backend ----
	var (
		cacheStore cache.Store
		rdb        *goredis.Client
	)
	switch cfg.Cache.Backend {
	case "redis":
		redisStore, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Error("redis init failed", "addr", cfg.Cache.RedisAddr, "err", err)
			os.Exit(1)
		}
		cacheStore = redisStore
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		log.Info("redis cache backend", "addr", cfg.Cache.RedisAddr)
	default:
		cacheStore = cache.NewMemory()
		log.Info("in-memory cache backend")
	}
	defer cacheStore.Close()

	prom := metrics.NewMetrics()
	market := cache.NewMarket(cacheStore, store, store, store, cache.TTLConfig{
		Symbol:  cfg.Cache.SymbolTTL,
		Quote:   cfg.Cache.QuoteTTL,
		Candles: cfg.Cache.CandleTTL,
	}, prom)

	// ---- Metrics + health server ----
	health := metrics.NewHealthStatus(cfg.Cache.Backend)
	health.CheckSQLite(ctx, store.DB())
	if rdb != nil {
		health.CheckRedis(ctx, rdb)
	}
	health.StartLivenessChecker(ctx, rdb, store.DB(), 15*time.Second)

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health, log)
	metricsSrv.Start()

	// ---- API server ----
	apiSrv := api.NewServer(market, prom, log, cfg.MaxCandles)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: apiSrv.Routes(),
	}
	go func() {
		log.Info("api server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Info("dataserver stopped")
}
