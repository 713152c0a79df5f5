package main

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coin-portfolio/internal/api"
	"coin-portfolio/internal/auth"
	"coin-portfolio/internal/config"
	"coin-portfolio/internal/db"
	"coin-portfolio/internal/market"
	"coin-portfolio/internal/portfolio"
	"coin-portfolio/internal/refresh"
	"coin-portfolio/internal/telemetry"
	"coin-portfolio/internal/ws"
	"github.com/go-chi/chi/v5"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadForServer()
	if err != nil {
		slog.Error("failed to load server config", "error", err)
		os.Exit(1)
	}

	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	tokens, err := auth.NewJWTManager(cfg.JWTSecret, 0)
	if err != nil {
		slog.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub()
	wsServer := ws.NewServer(hub)
	portfolioService := portfolio.NewService(database, database, database)
	apiServer := api.NewServer(database, database, database, portfolioService, tokens, tokens)

	router := chi.NewRouter()
	router.Use(telemetry.APIRequestMetricsMiddleware)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/debug/vars", expvar.Handler())
	router.Get("/ws", wsServer.Handler())
	apiServer.Mount(router)

	// The refresh loop usually lives in the worker binary; enabling it here
	// gives single-process deployments live stats without a second service.
	if cfg.RefreshEnabled {
		source := market.NewSpotSource(cfg.PriceFeedBaseURL, cfg.MarketInfoBaseURL)
		refresher := refresh.NewService(database, database, source, hub, cfg.RetentionDays)
		scheduler := refresh.NewScheduler(cfg.RefreshInterval, refresher.RunOnce)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("stat refresh enabled", "interval", cfg.RefreshInterval)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	slog.Info("api server started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErrCh:
		slog.Error("api server terminated unexpectedly", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("api server stopped")
}
