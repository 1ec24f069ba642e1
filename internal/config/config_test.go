package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadAppliesDefaultsWhenEnvEmpty(t *testing.T) {
	cfg := Load(fakeEnv(nil))

	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "https://api.jup.ag", cfg.JupiterAPIURL)
	assert.Equal(t, "paper", cfg.ExecutionMode)
	assert.Equal(t, []string{"USA", "CHN", "EU"}, cfg.WITSCountries)
	assert.Equal(t, 3.0, cfg.MaxLeverage)
	assert.Equal(t, 0.6, cfg.MaxMarginUsage)
	assert.Equal(t, 500.0, cfg.MaxDailyLoss)
	assert.Equal(t, 300, cfg.CooldownSeconds)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 60.0, cfg.PriceFreshnessThresholdS)
	assert.True(t, cfg.PriceIntegrityBlockLive)
}

func TestLoadReadsPriceRouterOverrides(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{
		"PRICE_FRESHNESS_THRESHOLD_S": "15",
		"PRICE_INTEGRITY_BLOCK_LIVE":  "false",
	}))
	assert.Equal(t, 15.0, cfg.PriceFreshnessThresholdS)
	assert.False(t, cfg.PriceIntegrityBlockLive)
}

func TestLoadReadsOverridesFromEnv(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{
		"DATABASE_URL":     "postgres://x",
		"EXECUTION_MODE":   "live",
		"MAX_LEVERAGE":     "5.5",
		"COOLDOWN_SECONDS": "60",
		"WITS_COUNTRIES":   "USA, CHN",
		"LOG_LEVEL":        "debug",
	}))

	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, "live", cfg.ExecutionMode)
	assert.Equal(t, 5.5, cfg.MaxLeverage)
	assert.Equal(t, 60, cfg.CooldownSeconds)
	assert.Equal(t, []string{"USA", "CHN"}, cfg.WITSCountries)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadFallsBackToPaperOnInvalidExecutionMode(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{"EXECUTION_MODE": "nonsense"}))
	assert.Equal(t, "paper", cfg.ExecutionMode)
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{
		"MAX_LEVERAGE":     "not-a-number",
		"COOLDOWN_SECONDS": "abc",
	}))
	assert.Equal(t, 3.0, cfg.MaxLeverage)
	assert.Equal(t, 300, cfg.CooldownSeconds)
}

func TestIsFeatureEnabledReflectsNonEmptyValue(t *testing.T) {
	env := fakeEnv(map[string]string{"EXPERIMENTAL_X": "1"})
	assert.True(t, IsFeatureEnabled(env, "EXPERIMENTAL_X"))
	assert.False(t, IsFeatureEnabled(env, "EXPERIMENTAL_Y"))
}

func TestSummaryOmitsSecretValues(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{
		"SOLANA_PRIVATE_KEY": "super-secret",
		"HYPERLIQUID_API_KEY": "key-123",
	}))
	summary := cfg.Summary()
	assert.NotContains(t, summary, "solana_private_key")
	assert.NotContains(t, summary, "hyperliquid_api_key")
	assert.Equal(t, true, summary["hyperliquid_enabled"])
}
