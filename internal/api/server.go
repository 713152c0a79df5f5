// Package api is the chi HTTP surface: auth, coin catalog and stats reads,
// and the user-scoped portfolio endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coin-portfolio/internal/auth"
	"coin-portfolio/internal/db"
	"coin-portfolio/internal/errs"
	"coin-portfolio/internal/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type UserStore interface {
	InsertUser(ctx context.Context, user db.User) (db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
}

type CoinStore interface {
	ListCoins(ctx context.Context) ([]db.Coin, error)
	GetCoinByID(ctx context.Context, id int64) (*db.Coin, error)
	GetCoinByTicker(ctx context.Context, ticker string) (*db.Coin, error)
	CreateCoin(ctx context.Context, coin db.Coin) (db.Coin, error)
	UpdateCoin(ctx context.Context, id int64, coin db.Coin) (bool, error)
	DeleteCoin(ctx context.Context, id int64) (bool, error)
}

type StatsStore interface {
	LatestStats(ctx context.Context) (map[int64]db.CoinStat, error)
	LatestStatByCoin(ctx context.Context, coinID int64) (*db.CoinStat, error)
	StatByCoinAndTime(ctx context.Context, coinID int64, at time.Time) (*db.CoinStat, error)
	StatsAtTime(ctx context.Context, at time.Time) (map[int64]db.CoinStat, error)
	StatsByCoinInRange(ctx context.Context, coinID int64, from, to time.Time) ([]db.CoinStat, error)
}

type PortfolioService interface {
	ListEntries(ctx context.Context, userID int64) ([]portfolio.Entry, error)
	GetEntry(ctx context.Context, id, userID int64) (portfolio.Entry, error)
	CreateEntry(ctx context.Context, entry db.PortfolioEntry) (portfolio.Entry, error)
	UpdateEntry(ctx context.Context, id, userID int64, entry db.PortfolioEntry) error
	DeleteEntry(ctx context.Context, id, userID int64) error
	Summary(ctx context.Context, userID int64) (portfolio.Summary, error)
}

type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

type Server struct {
	Users     UserStore
	Coins     CoinStore
	Stats     StatsStore
	Portfolio PortfolioService
	Tokens    TokenIssuer
	Verifier  auth.Verifier

	validate *validator.Validate
}

type contextKey string

const userIDContextKey contextKey = "userID"

func NewServer(users UserStore, coins CoinStore, stats StatsStore, pf PortfolioService, tokens TokenIssuer, verifier auth.Verifier) *Server {
	return &Server{
		Users:     users,
		Coins:     coins,
		Stats:     stats,
		Portfolio: pf,
		Tokens:    tokens,
		Verifier:  verifier,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/coins", s.handleListCoins)
		r.Get("/coins/at", s.handleCoinsAtTime)
		r.Get("/coins/ticker/{ticker}", s.handleGetCoinByTicker)
		r.Get("/coins/{coinID}", s.handleGetCoin)
		r.Get("/coins/{coinID}/at", s.handleGetCoinAtTime)
		r.Get("/coins/{coinID}/history", s.handleCoinHistory)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/coins", s.handleCreateCoin)
			r.Put("/coins/{coinID}", s.handleUpdateCoin)
			r.Delete("/coins/{coinID}", s.handleDeleteCoin)

			r.Get("/portfolio", s.handlePortfolioSummary)
			r.Get("/portfolio/entries", s.handleListEntries)
			r.Post("/portfolio/entries", s.handleCreateEntry)
			r.Get("/portfolio/entries/{entryID}", s.handleGetEntry)
			r.Put("/portfolio/entries/{entryID}", s.handleUpdateEntry)
			r.Delete("/portfolio/entries/{entryID}", s.handleDeleteEntry)
		})
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		claims, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid auth token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) int64 {
	userID, _ := ctx.Value(userIDContextKey).(int64)
	return userID
}

func extractToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiError{Error: message})
}

// writeDomainError maps the sentinel errors onto HTTP statuses; anything
// unrecognized is a 500 with the caller's fallback message.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}

func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, errors.New("invalid timestamp")
}
