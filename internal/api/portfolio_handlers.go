package api

import (
	"net/http"
	"time"

	"coin-portfolio/internal/db"
	"coin-portfolio/internal/portfolio"
	"github.com/shopspring/decimal"
)

type entryResponse struct {
	ID                   int64           `json:"id"`
	CoinID               int64           `json:"coin_id"`
	CoinTicker           string          `json:"coin_ticker"`
	CoinName             string          `json:"coin_name"`
	Quantity             decimal.Decimal `json:"quantity"`
	EntryPrice           decimal.Decimal `json:"entry_price"`
	EntryDate            string          `json:"entry_date"`
	Notes                string          `json:"notes,omitempty"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

type summaryResponse struct {
	TotalInvestment           decimal.Decimal `json:"total_investment"`
	TotalCurrentValue         decimal.Decimal `json:"total_current_value"`
	TotalProfitLoss           decimal.Decimal `json:"total_profit_loss"`
	TotalProfitLossPercentage decimal.Decimal `json:"total_profit_loss_percentage"`
	Entries                   []entryResponse `json:"entries"`
}

func entryToResponse(entry portfolio.Entry) entryResponse {
	return entryResponse{
		ID:                   entry.ID,
		CoinID:               entry.CoinID,
		CoinTicker:           entry.CoinTicker,
		CoinName:             entry.CoinName,
		Quantity:             entry.Quantity,
		EntryPrice:           entry.EntryPrice,
		EntryDate:            entry.EntryDate.UTC().Format(time.RFC3339),
		Notes:                entry.Notes,
		CurrentPrice:         entry.CurrentPrice,
		CurrentValue:         entry.Valuation.CurrentValue,
		ProfitLoss:           entry.Valuation.ProfitLoss,
		ProfitLossPercentage: entry.Valuation.ProfitLossPercentage,
		CreatedAt:            entry.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            entry.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func entriesToResponse(entries []portfolio.Entry) []entryResponse {
	response := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, entryToResponse(entry))
	}
	return response
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	summary, err := s.Portfolio.Summary(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, "failed to load portfolio")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalInvestment:           summary.TotalInvestment,
		TotalCurrentValue:         summary.TotalCurrentValue,
		TotalProfitLoss:           summary.TotalProfitLoss,
		TotalProfitLossPercentage: summary.TotalProfitLossPercentage,
		Entries:                   entriesToResponse(summary.Entries),
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	entries, err := s.Portfolio.ListEntries(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, "failed to load entries")
		return
	}

	writeJSON(w, http.StatusOK, entriesToResponse(entries))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	entryID, err := parseIDParam(r, "entryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := s.Portfolio.GetEntry(r.Context(), entryID, userID)
	if err != nil {
		writeDomainError(w, err, "failed to load entry")
		return
	}

	writeJSON(w, http.StatusOK, entryToResponse(entry))
}

type entryRequest struct {
	CoinID     int64           `json:"coin_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	EntryDate  string          `json:"entry_date"`
	Notes      string          `json:"notes"`
}

// toEntry validates the payload and converts it into the persisted form.
func (req entryRequest) toEntry(userID int64) (db.PortfolioEntry, string) {
	if req.CoinID <= 0 {
		return db.PortfolioEntry{}, "coin_id must be greater than 0"
	}
	if !req.Quantity.IsPositive() {
		return db.PortfolioEntry{}, "quantity must be greater than 0"
	}
	if req.EntryPrice.IsNegative() {
		return db.PortfolioEntry{}, "entry_price must be greater than or equal to 0"
	}
	entryDate, err := parseTimestamp(req.EntryDate)
	if err != nil {
		return db.PortfolioEntry{}, "entry_date must be RFC3339 or YYYY-MM-DD"
	}
	return db.PortfolioEntry{
		UserID:     userID,
		CoinID:     req.CoinID,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		EntryDate:  entryDate,
		Notes:      req.Notes,
	}, ""
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req entryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, problem := req.toEntry(userID)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	created, err := s.Portfolio.CreateEntry(r.Context(), entry)
	if err != nil {
		writeDomainError(w, err, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, entryToResponse(created))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	entryID, err := parseIDParam(r, "entryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req entryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, problem := req.toEntry(userID)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	if err := s.Portfolio.UpdateEntry(r.Context(), entryID, userID, entry); err != nil {
		writeDomainError(w, err, "failed to update entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	entryID, err := parseIDParam(r, "entryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := s.Portfolio.DeleteEntry(r.Context(), entryID, userID); err != nil {
		writeDomainError(w, err, "failed to delete entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
