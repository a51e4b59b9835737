package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"chartdata/internal/cache"
	"chartdata/internal/indicator"
	"chartdata/internal/store/sqlite"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSymbol serves GET /api/v1/symbols?symbol=AAPL.
// A fallback fetch re-primes the cache as an explicit second step.
func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	meta, cached, err := s.market.GetSymbol(r.Context(), symbol)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown symbol "+symbol)
		return
	}
	if err != nil {
		s.log.Error("symbol lookup failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "symbol lookup failed")
		return
	}
	if !cached {
		if err := s.market.SetSymbol(r.Context(), meta); err != nil {
			s.log.Warn("symbol cache prime failed", "symbol", symbol, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleQuote serves GET /api/v1/quotes?symbol=AAPL. Quote fallbacks are
// not re-primed by the read path; the quote writer owns cache population.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, _, err := s.market.GetQuote(r.Context(), symbol)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no quote for "+symbol)
		return
	}
	if err != nil {
		s.log.Error("quote lookup failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "quote lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleCandles serves GET /api/v1/candles?symbol=&resolution=&from=&to=.
func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	key, ok := s.candleKeyFromQuery(w, r)
	if !ok {
		return
	}

	resp, cached, err := s.market.GetCandles(r.Context(), key, s.maxCandles)
	if err != nil {
		s.log.Error("candle lookup failed", "symbol", key.Symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "candle lookup failed")
		return
	}
	if !cached {
		if err := s.market.SetCandles(r.Context(), key, resp); err != nil {
			s.log.Warn("candle cache prime failed", "symbol", key.Symbol, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// calculateRequest is the body of POST /api/v1/indicators/calculate.
type calculateRequest struct {
	Symbol     string         `json:"symbol"`
	Resolution string         `json:"resolution"`
	From       int64          `json:"from"`
	To         int64          `json:"to"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// handleCalculate fetches the candle range through the cache and dispatches
// the indicator calculation. An unknown type is the one 4xx failure; short
// history returns an empty series with 200.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Symbol == "" || req.Resolution == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "symbol, resolution, and type are required")
		return
	}

	key := cache.CandleKey{Symbol: req.Symbol, Resolution: req.Resolution, From: req.From, To: req.To}
	resp, cached, err := s.market.GetCandles(r.Context(), key, s.maxCandles)
	if err != nil {
		s.log.Error("candle lookup failed", "symbol", req.Symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "candle lookup failed")
		return
	}
	if !cached {
		if err := s.market.SetCandles(r.Context(), key, resp); err != nil {
			s.log.Warn("candle cache prime failed", "symbol", req.Symbol, "err", err)
		}
	}

	start := time.Now()
	result, err := indicator.Calculate(req.Type, resp.Candles, req.Parameters, req.Name)
	if err != nil {
		if errors.Is(err, indicator.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("indicator calculation failed", "type", req.Type, "err", err)
		writeError(w, http.StatusInternalServerError, "indicator calculation failed")
		return
	}
	if s.prom != nil {
		s.prom.IndicatorComputeDur.Observe(time.Since(start).Seconds())
		s.prom.IndicatorsTotal.WithLabelValues(result.Type).Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCacheStats serves GET /api/v1/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	stats, err := s.market.Stats(r.Context())
	if err != nil {
		s.log.Error("cache stats failed", "err", err)
		writeError(w, http.StatusInternalServerError, "cache stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleInvalidate serves POST /api/v1/cache/invalidate[?symbol=AAPL].
// With a symbol it invalidates that symbol's entries across all kinds;
// without one it clears the whole cache.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	symbol := r.URL.Query().Get("symbol")

	var err error
	if symbol != "" {
		err = s.market.InvalidateSymbol(r.Context(), symbol)
	} else {
		err = s.market.InvalidateAll(r.Context())
	}
	if err != nil {
		s.log.Error("cache invalidation failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) candleKeyFromQuery(w http.ResponseWriter, r *http.Request) (cache.CandleKey, bool) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	resolution := q.Get("resolution")
	if symbol == "" || resolution == "" {
		writeError(w, http.StatusBadRequest, "symbol and resolution are required")
		return cache.CandleKey{}, false
	}
	from, err := strconv.ParseInt(q.Get("from"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from timestamp")
		return cache.CandleKey{}, false
	}
	to, err := strconv.ParseInt(q.Get("to"), 10, 64)
	if err != nil || to < from {
		writeError(w, http.StatusBadRequest, "invalid to timestamp")
		return cache.CandleKey{}, false
	}
	return cache.CandleKey{Symbol: symbol, Resolution: resolution, From: from, To: to}, true
}
