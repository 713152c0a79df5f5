package config

import (
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "PORT",
		"PRICE_FEED_BASE_URL", "MARKET_INFO_BASE_URL",
		"REFRESH_INTERVAL", "STATS_RETENTION_DAYS", "REFRESH_ENABLED",
	} {
		t.Setenv(key, "")
	}
	for key, value := range kv {
		t.Setenv(key, value)
	}
}

func TestLoadForServerDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/portfolio",
		"JWT_SECRET":   "secret",
	})

	cfg, err := LoadForServer()
	if err != nil {
		t.Fatalf("LoadForServer: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.RefreshInterval != 10*time.Minute {
		t.Errorf("RefreshInterval = %v, want 10m", cfg.RefreshInterval)
	}
	if cfg.RetentionDays != 0 {
		t.Errorf("RetentionDays = %d, want 0", cfg.RetentionDays)
	}
	if cfg.RefreshEnabled {
		t.Error("RefreshEnabled = true, want false by default for server mode")
	}
}

func TestLoadForServerMissingRequired(t *testing.T) {
	setEnv(t, nil)

	_, err := LoadForServer()
	if err == nil {
		t.Fatal("expected error for missing env")
	}
	for _, want := range []string{"DATABASE_URL", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadForWorker(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":         "postgres://localhost/portfolio",
		"REFRESH_INTERVAL":     "30s",
		"STATS_RETENTION_DAYS": "90",
	})

	cfg, err := LoadForWorker()
	if err != nil {
		t.Fatalf("LoadForWorker: %v", err)
	}
	if !cfg.RefreshEnabled {
		t.Error("worker mode must force RefreshEnabled")
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
}

func TestLoadForWorkerNoJWTRequired(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/portfolio",
	})

	if _, err := LoadForWorker(); err != nil {
		t.Fatalf("worker mode should not require JWT_SECRET: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad interval", map[string]string{"REFRESH_INTERVAL": "soon"}},
		{"negative interval", map[string]string{"REFRESH_INTERVAL": "-5m"}},
		{"bad retention", map[string]string{"STATS_RETENTION_DAYS": "ninety"}},
		{"negative retention", map[string]string{"STATS_RETENTION_DAYS": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := map[string]string{"DATABASE_URL": "postgres://localhost/portfolio"}
			for k, v := range tc.env {
				env[k] = v
			}
			setEnv(t, env)
			if _, err := LoadForWorker(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":    "postgres://localhost/portfolio",
		"JWT_SECRET":      "secret",
		"REFRESH_ENABLED": "true",
	})

	cfg, err := LoadForServer()
	if err != nil {
		t.Fatalf("LoadForServer: %v", err)
	}
	if !cfg.RefreshEnabled {
		t.Error("REFRESH_ENABLED=true should enable refresh")
	}
}
