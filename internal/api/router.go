// Package api provides the HTTP surface over the market data cache and the
// indicator engine.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"chartdata/internal/cache"
	"chartdata/internal/metrics"
)

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	market     *cache.Market
	prom       *metrics.Metrics // optional
	log        *slog.Logger
	maxCandles int
}

// NewServer wires the handler dependencies. prom may be nil in tests.
func NewServer(market *cache.Market, prom *metrics.Metrics, log *slog.Logger, maxCandles int) *Server {
	if maxCandles <= 0 {
		maxCandles = 1000
	}
	return &Server{
		market:     market,
		prom:       prom,
		log:        log,
		maxCandles: maxCandles,
	}
}

// Routes builds the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.instrument("health", s.handleHealth))
	mux.HandleFunc("/api/v1/symbols", s.instrument("symbols", s.handleSymbol))
	mux.HandleFunc("/api/v1/quotes", s.instrument("quotes", s.handleQuote))
	mux.HandleFunc("/api/v1/candles", s.instrument("candles", s.handleCandles))
	mux.HandleFunc("/api/v1/indicators/calculate", s.instrument("indicators", s.handleCalculate))
	mux.HandleFunc("/api/v1/cache/stats", s.instrument("cache_stats", s.handleCacheStats))
	mux.HandleFunc("/api/v1/cache/invalidate", s.instrument("cache_invalidate", s.handleInvalidate))
	return mux
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per route and status code.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if s.prom != nil {
			s.prom.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
