package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shipcalc/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":                "postgres://localhost/shipcalc",
		"REDIS_URL":                   "",
		"PORT":                        "",
		"ORIGIN_LAT":                  "",
		"ORIGIN_LON":                  "",
		"ORIGIN_LABEL":                "",
		"DIMENSIONAL_DIVISOR":         "",
		"BASE_CURRENCY":               "",
		"REFDATA_REFRESH_INTERVAL":    "",
		"REFDATA_CACHE_TTL":           "",
		"REFDATA_ALLOW_SEED_FALLBACK": "",
		"CALC_RATE_LIMIT_MAX":         "",
		"CALC_RATE_LIMIT_WINDOW":      "",
	})
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 34.0522, cfg.OriginLat)
	require.Equal(t, -118.2437, cfg.OriginLon)
	require.Equal(t, "Los Angeles, CA", cfg.OriginLabel)
	require.Equal(t, 5000.0, cfg.DimensionalDivisor)
	require.Equal(t, "USD", cfg.BaseCurrency)
	require.Equal(t, 15*time.Minute, cfg.RefdataRefreshInterval)
	require.Equal(t, int64(60), cfg.CalcRateLimitMax)
	require.Equal(t, time.Minute, cfg.CalcRateLimitWindow)
	require.False(t, cfg.RefdataAllowSeedFallback)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":                "",
		"REFDATA_ALLOW_SEED_FALLBACK": "true",
		"ORIGIN_LAT":                  "1.3521",
		"ORIGIN_LON":                  "103.8198",
		"ORIGIN_LABEL":                "Singapore",
		"BASE_CURRENCY":               "sgd",
		"DIMENSIONAL_DIVISOR":         "6000",
		"CALC_RATE_LIMIT_MAX":         "10",
		"CALC_RATE_LIMIT_WINDOW":      "30s",
	})
	require.NoError(t, err)

	require.Equal(t, 1.3521, cfg.OriginLat)
	require.Equal(t, "Singapore", cfg.OriginLabel)
	require.Equal(t, "SGD", cfg.BaseCurrency)
	require.Equal(t, 6000.0, cfg.DimensionalDivisor)
	require.Equal(t, int64(10), cfg.CalcRateLimitMax)
	require.Equal(t, 30*time.Second, cfg.CalcRateLimitWindow)
}

func TestMustLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shipcalc")
	cfg := config.MustLoad()
	require.NotNil(t, cfg)
	require.Equal(t, "postgres://localhost/shipcalc", cfg.DatabaseURL)
}

func TestLoadRequiresDatabaseWithoutFallback(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":                "",
		"REFDATA_ALLOW_SEED_FALLBACK": "",
	})
	require.Error(t, err)
}

func TestLoadRejectsBadOrigin(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost/shipcalc",
		"ORIGIN_LAT":   "120",
	})
	require.Error(t, err)
}
