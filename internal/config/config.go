// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the translator service and CLI.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	RateLimitMax    int
	RateLimitWindow time.Duration
	JanitorInterval time.Duration

	RequestTimeout time.Duration
	RetryAttempts  int

	StorePath   string
	RedisURL    string
	DatabaseURL string

	Generator      string
	GeneratorModel string
	OpenAIAPIKey   string

	VoiceProvider string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("ANGER_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("ANGER_METRICS_NAMESPACE", "angertranslator"),
		StorePath:        envOrDefault("ANGER_STORE_PATH", defaultStorePath()),
		RedisURL:         trimmed("ANGER_REDIS_URL"),
		DatabaseURL:      trimmed("ANGER_DATABASE_URL"),
		Generator:        strings.ToLower(envOrDefault("ANGER_GENERATOR", "mock")),
		GeneratorModel:   trimmed("ANGER_GENERATOR_MODEL"),
		OpenAIAPIKey:     trimmed("OPENAI_API_KEY"),
		VoiceProvider:    trimmed("ANGER_VOICE_PROVIDER"),
		RateLimitMax:     10,
		RateLimitWindow:  60 * time.Second,
		JanitorInterval:  5 * time.Minute,
		RequestTimeout:   10 * time.Second,
		RetryAttempts:    3,
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	if cfg.RateLimitMax, err = intFromEnv("ANGER_RATE_LIMIT_MAX", cfg.RateLimitMax); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitWindow, err = durationFromEnv("ANGER_RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return Config{}, err
	}
	if cfg.JanitorInterval, err = durationFromEnv("ANGER_JANITOR_INTERVAL", cfg.JanitorInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationFromEnv("ANGER_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RetryAttempts, err = intFromEnv("ANGER_RETRY_ATTEMPTS", cfg.RetryAttempts); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationFromEnv("ANGER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.AllowAnyOrigin, err = boolFromEnv("ANGER_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin); err != nil {
		return Config{}, err
	}

	if cfg.RateLimitMax <= 0 {
		return Config{}, fmt.Errorf("ANGER_RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimitWindow <= 0 {
		return Config{}, fmt.Errorf("ANGER_RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("ANGER_REQUEST_TIMEOUT must be positive")
	}
	if cfg.RetryAttempts < 1 || cfg.RetryAttempts > 3 {
		return Config{}, fmt.Errorf("ANGER_RETRY_ATTEMPTS must be between 1 and 3")
	}
	switch cfg.Generator {
	case "mock", "openai":
	default:
		return Config{}, fmt.Errorf("ANGER_GENERATOR must be mock or openai, got %q", cfg.Generator)
	}

	return cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".angertranslator", "store.json")
	}
	return filepath.Join(home, ".angertranslator", "store.json")
}

func envOrDefault(key, fallback string) string {
	v := trimmed(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
