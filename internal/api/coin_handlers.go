package api

import (
	"net/http"
	"strings"
	"time"

	"coin-portfolio/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type statResponse struct {
	ID           int64               `json:"id"`
	CoinID       int64               `json:"coin_id"`
	CurrentPrice decimal.Decimal     `json:"current_price"`
	MarketCap    decimal.NullDecimal `json:"market_cap"`
	Volume24h    decimal.NullDecimal `json:"volume_24h"`
	RecordedAt   string              `json:"recorded_at"`
}

type coinResponse struct {
	ID     int64         `json:"id"`
	Ticker string        `json:"ticker"`
	Name   string        `json:"name"`
	Stat   *statResponse `json:"stat"`
}

func statToResponse(stat db.CoinStat) statResponse {
	return statResponse{
		ID:           stat.ID,
		CoinID:       stat.CoinID,
		CurrentPrice: stat.CurrentPrice,
		MarketCap:    stat.MarketCap,
		Volume24h:    stat.Volume24h,
		RecordedAt:   stat.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func coinToResponse(coin db.Coin, stat *db.CoinStat) coinResponse {
	response := coinResponse{ID: coin.ID, Ticker: coin.Ticker, Name: coin.Name}
	if stat != nil {
		converted := statToResponse(*stat)
		response.Stat = &converted
	}
	return response
}

// handleListCoins joins every coin with its latest snapshot. Coins that
// were never refreshed come back with a null stat.
func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := s.Coins.ListCoins(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coins")
		return
	}

	stats, err := s.Stats.LatestStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	response := make([]coinResponse, 0, len(coins))
	for _, coin := range coins {
		var stat *db.CoinStat
		if found, ok := stats[coin.ID]; ok {
			stat = &found
		}
		response = append(response, coinToResponse(coin, stat))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCoinsAtTime(w http.ResponseWriter, r *http.Request) {
	at, err := parseTimestamp(r.URL.Query().Get("timestamp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be RFC3339 or YYYY-MM-DD")
		return
	}

	coins, err := s.Coins.ListCoins(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coins")
		return
	}

	stats, err := s.Stats.StatsAtTime(r.Context(), at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	response := make([]coinResponse, 0, len(coins))
	for _, coin := range coins {
		var stat *db.CoinStat
		if found, ok := stats[coin.ID]; ok {
			stat = &found
		}
		response = append(response, coinToResponse(coin, stat))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetCoin(w http.ResponseWriter, r *http.Request) {
	coinID, err := parseIDParam(r, "coinID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coin id")
		return
	}

	coin, err := s.Coins.GetCoinByID(r.Context(), coinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coin")
		return
	}
	if coin == nil {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	stat, err := s.Stats.LatestStatByCoin(r.Context(), coinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, coinToResponse(*coin, stat))
}

// handleGetCoinByTicker looks a coin up by its symbol; matching is
// case-insensitive, the store normalizes to uppercase.
func (s *Server) handleGetCoinByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	coin, err := s.Coins.GetCoinByTicker(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coin")
		return
	}
	if coin == nil {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	stat, err := s.Stats.LatestStatByCoin(r.Context(), coin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, coinToResponse(*coin, stat))
}

func (s *Server) handleGetCoinAtTime(w http.ResponseWriter, r *http.Request) {
	coinID, err := parseIDParam(r, "coinID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coin id")
		return
	}

	at, err := parseTimestamp(r.URL.Query().Get("timestamp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be RFC3339 or YYYY-MM-DD")
		return
	}

	coin, err := s.Coins.GetCoinByID(r.Context(), coinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coin")
		return
	}
	if coin == nil {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	stat, err := s.Stats.StatByCoinAndTime(r.Context(), coinID, at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, coinToResponse(*coin, stat))
}

// handleCoinHistory returns snapshots over [from, to], both bounds
// inclusive and required. An inverted range is a client error.
func (s *Server) handleCoinHistory(w http.ResponseWriter, r *http.Request) {
	coinID, err := parseIDParam(r, "coinID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coin id")
		return
	}

	from, err := parseTimestamp(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be RFC3339 or YYYY-MM-DD")
		return
	}
	to, err := parseTimestamp(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be RFC3339 or YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	coin, err := s.Coins.GetCoinByID(r.Context(), coinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load coin")
		return
	}
	if coin == nil {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	stats, err := s.Stats.StatsByCoinInRange(r.Context(), coinID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	response := make([]statResponse, 0, len(stats))
	for _, stat := range stats {
		response = append(response, statToResponse(stat))
	}

	writeJSON(w, http.StatusOK, response)
}

type coinRequest struct {
	Ticker string `json:"ticker" validate:"required,alphanum,max=16"`
	Name   string `json:"name" validate:"required,max=64"`
}

func (s *Server) handleCreateCoin(w http.ResponseWriter, r *http.Request) {
	var req coinRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "ticker and name are required")
		return
	}

	coin, err := s.Coins.CreateCoin(r.Context(), db.Coin{Ticker: req.Ticker, Name: req.Name})
	if err != nil {
		writeDomainError(w, err, "failed to create coin")
		return
	}

	writeJSON(w, http.StatusCreated, coinToResponse(coin, nil))
}

func (s *Server) handleUpdateCoin(w http.ResponseWriter, r *http.Request) {
	coinID, err := parseIDParam(r, "coinID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coin id")
		return
	}

	var req coinRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "ticker and name are required")
		return
	}

	updated, err := s.Coins.UpdateCoin(r.Context(), coinID, db.Coin{Ticker: req.Ticker, Name: req.Name})
	if err != nil {
		writeDomainError(w, err, "failed to update coin")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCoin(w http.ResponseWriter, r *http.Request) {
	coinID, err := parseIDParam(r, "coinID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coin id")
		return
	}

	deleted, err := s.Coins.DeleteCoin(r.Context(), coinID)
	if err != nil {
		writeDomainError(w, err, "failed to delete coin")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "coin not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
