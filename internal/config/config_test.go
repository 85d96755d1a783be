package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_URL", "ANALYZE_TIMEOUT", "BACKEND_RATE_PER_MIN", "SESSION_TTL", "TICKER_INTERVAL", "LOG_LEVEL", "DEFAULT_USER_ID"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8080" || cfg.AnalyzeTimeout != 180*time.Second || cfg.BackendRatePerMin != 30 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.TickerInterval != 5*time.Second || cfg.SessionTTL != 2*time.Hour {
		t.Errorf("unexpected intervals %+v", cfg)
	}
	if cfg.DefaultUserID != "dashboard_user" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("ANALYZE_TIMEOUT", "90")
	t.Setenv("TICKER_INTERVAL", "250ms")
	t.Setenv("SESSION_TTL", "nonsense")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.BackendURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BackendURL)
	}
	if cfg.AnalyzeTimeout != 90*time.Second || cfg.TickerInterval != 250*time.Millisecond {
		t.Errorf("unexpected durations %v / %v", cfg.AnalyzeTimeout, cfg.TickerInterval)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("invalid value should fall back, got %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}
