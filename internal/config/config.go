package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeServer Mode = "server"
	ModeWorker Mode = "worker"
)

const defaultRefreshInterval = 10 * time.Minute

// Config holds service configuration shared by the API server and the
// refresh worker.
type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	PriceFeedBaseURL  string
	MarketInfoBaseURL string
	RefreshInterval   time.Duration
	RetentionDays     int
	RefreshEnabled    bool
}

func LoadForServer() (Config, error) {
	return load(ModeServer)
}

func LoadForWorker() (Config, error) {
	return load(ModeWorker)
}

func load(mode Mode) (Config, error) {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		Port:              envDefault("PORT", "8080"),
		PriceFeedBaseURL:  os.Getenv("PRICE_FEED_BASE_URL"),
		MarketInfoBaseURL: os.Getenv("MARKET_INFO_BASE_URL"),
		RefreshInterval:   defaultRefreshInterval,
		RefreshEnabled:    envBool("REFRESH_ENABLED"),
	}

	var validationErrs []string
	requireEnv("DATABASE_URL", cfg.DatabaseURL, &validationErrs)

	switch mode {
	case ModeServer:
		requireEnv("JWT_SECRET", cfg.JWTSecret, &validationErrs)
	case ModeWorker:
		cfg.RefreshEnabled = true
	default:
		validationErrs = append(validationErrs, "unknown service mode")
	}

	if raw := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL")); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			validationErrs = append(validationErrs, fmt.Sprintf("REFRESH_INTERVAL %q is not a positive duration", raw))
		} else {
			cfg.RefreshInterval = interval
		}
	}

	if raw := strings.TrimSpace(os.Getenv("STATS_RETENTION_DAYS")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			validationErrs = append(validationErrs, fmt.Sprintf("STATS_RETENTION_DAYS %q is not a non-negative integer", raw))
		} else {
			cfg.RetentionDays = days
		}
	}

	if len(validationErrs) > 0 {
		return cfg, errors.New(strings.Join(validationErrs, "; "))
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

func requireEnv(name, value string, errs *[]string) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, name+" is required")
	}
}
