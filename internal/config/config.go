// Package config reads process configuration from environment variables,
// with a .env file as fallback and defaults in code.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds process configuration.
type Config struct {
	Addr         string        // listen address
	YandexAPIURL string        // upstream base URL override, empty for the default
	RateLimit    float64       // upstream requests per second
	HTTPTimeout  time.Duration // per-request timeout against the upstream
	LogLevel     log.Level
}

const (
	defaultAddr        = ":8080"
	defaultRateLimit   = 5.0
	defaultHTTPTimeout = 30 * time.Second
)

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:         envOrDefault("LIKESYNC_ADDR", defaultAddr),
		YandexAPIURL: os.Getenv("YANDEX_API_URL"),
		RateLimit:    parseFloatOrDefault(os.Getenv("YANDEX_RATE_LIMIT"), defaultRateLimit),
		HTTPTimeout:  parseDurationOrDefault(os.Getenv("HTTP_TIMEOUT"), defaultHTTPTimeout),
		LogLevel:     parseLevelOrDefault(os.Getenv("LOG_LEVEL"), log.InfoLevel),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloatOrDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseDurationOrDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseLevelOrDefault(s string, def log.Level) log.Level {
	if s == "" {
		return def
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return def
	}
	return lvl
}
