// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Port string

	// BackendURL overrides the per-page base-URL heuristic.
	BackendURL        string
	AnalyzeTimeout    time.Duration
	BackendRatePerMin int

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	SessionTTL     time.Duration
	TickerInterval time.Duration
	DefaultUserID  string

	LogLevel slog.Level
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		BackendURL:        strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		AnalyzeTimeout:    getEnvDuration("ANALYZE_TIMEOUT", 180*time.Second),
		BackendRatePerMin: getEnvInt("BACKEND_RATE_PER_MIN", 30),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		CacheTTL:          getEnvDuration("CACHE_TTL", 30*time.Second),
		SessionTTL:        getEnvDuration("SESSION_TTL", 2*time.Hour),
		TickerInterval:    getEnvDuration("TICKER_INTERVAL", 5*time.Second),
		DefaultUserID:     getEnv("DEFAULT_USER_ID", "dashboard_user"),
		LogLevel:          getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("ignoring invalid duration", "key", key, "value", value)
	return defaultValue
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}
