package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	// Origin warehouse the calculation measures distance from.
	OriginLat   float64
	OriginLon   float64
	OriginLabel string

	DimensionalDivisor float64
	BaseCurrency       string

	RefdataRefreshInterval   time.Duration
	RefdataCacheTTL          time.Duration
	RefdataAllowSeedFallback bool

	CalcRateLimitMax    int64
	CalcRateLimitWindow time.Duration

	MaxBodyBytes int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		OriginLat:   parseFloat(k.String("ORIGIN_LAT"), 34.0522),
		OriginLon:   parseFloat(k.String("ORIGIN_LON"), -118.2437),
		OriginLabel: valueOrDefault(k.String("ORIGIN_LABEL"), "Los Angeles, CA"),

		DimensionalDivisor: parseFloat(k.String("DIMENSIONAL_DIVISOR"), 5000),
		BaseCurrency:       strings.ToUpper(valueOrDefault(k.String("BASE_CURRENCY"), "USD")),

		RefdataRefreshInterval:   parseDuration(k.String("REFDATA_REFRESH_INTERVAL"), "15m"),
		RefdataCacheTTL:          parseDuration(k.String("REFDATA_CACHE_TTL"), "30m"),
		RefdataAllowSeedFallback: parseBool(k.String("REFDATA_ALLOW_SEED_FALLBACK")),

		CalcRateLimitMax:    parseInt64(k.String("CALC_RATE_LIMIT_MAX"), 60),
		CalcRateLimitWindow: parseDuration(k.String("CALC_RATE_LIMIT_WINDOW"), "1m"),

		MaxBodyBytes: parseInt64(k.String("MAX_BODY_BYTES"), 1<<20),
	}

	if cfg.OriginLat < -90 || cfg.OriginLat > 90 || cfg.OriginLon < -180 || cfg.OriginLon > 180 {
		return nil, errors.New("ORIGIN_LAT/ORIGIN_LON out of range")
	}
	if cfg.DimensionalDivisor <= 0 {
		return nil, errors.New("DIMENSIONAL_DIVISOR must be positive")
	}
	if cfg.DatabaseURL == "" && !cfg.RefdataAllowSeedFallback {
		return nil, errors.New("DATABASE_URL is required unless REFDATA_ALLOW_SEED_FALLBACK is enabled")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
