package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"coin-portfolio/internal/config"
	"coin-portfolio/internal/db"
	"coin-portfolio/internal/market"
	"coin-portfolio/internal/refresh"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadForWorker()
	if err != nil {
		slog.Error("failed to load worker config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	source := market.NewSpotSource(cfg.PriceFeedBaseURL, cfg.MarketInfoBaseURL)
	// No websocket clients in the worker, so no publisher.
	refresher := refresh.NewService(database, database, source, nil, cfg.RetentionDays)
	scheduler := refresh.NewScheduler(cfg.RefreshInterval, refresher.RunOnce)

	scheduler.Start()
	slog.Info("refresh worker started", "interval", cfg.RefreshInterval, "retention_days", cfg.RetentionDays)

	<-ctx.Done()
	slog.Info("shutdown signal received")
	scheduler.Stop()
	slog.Info("refresh worker stopped")
}
