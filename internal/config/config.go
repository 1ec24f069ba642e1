// Package config loads the desk's runtime configuration from the
// environment. Unlike the rule table and portfolio overlays (which are
// tabular and live in YAML), these are scalar operational knobs, so
// they're read straight from the process environment with defaults.
package config

import (
	"os"
	"strconv"
	"strings"
)

func osGetenv(key string) string { return os.Getenv(key) }

// Config is every environment-derived setting the desk reads at startup.
type Config struct {
	DatabaseURL string
	RedisURL    string

	HyperliquidAPIKey string
	DriftRPCURL       string
	SolanaRPCURL      string
	SolanaPrivateKey  string
	JupiterAPIURL     string

	ExecutionMode string // paper|live

	WITSCountries []string
	WITSProducts  []string
	GDELTKeywords []string

	MaxLeverage    float64
	MaxMarginUsage float64
	MaxDailyLoss   float64
	CooldownSeconds int

	// PriceFreshnessThresholdS is how old (in seconds) a resolved price may
	// be before the execution router treats it as stale. Not present in
	// the upstream config module despite the router importing it from
	// there; defaulted here to half the 120s venue quote TTL that
	// execution.PriceAuthority.SetPrice uses, since a decision
	// should use a noticeably fresher quote than the cache's outer bound.
	PriceFreshnessThresholdS float64
	// PriceIntegrityBlockLive blocks live orders outright when cross-venue
	// price validation is in WARNING state, rather than merely degrading
	// them. Defaults true: fail safe in live mode.
	PriceIntegrityBlockLive bool

	LogLevel string
}

// Load reads Config from the environment, falling back to the desk's
// standard defaults for anything unset or unparseable.
func Load(getenv func(string) string) Config {
	if getenv == nil {
		getenv = osGetenv
	}

	cfg := Config{
		DatabaseURL:       getenv("DATABASE_URL"),
		RedisURL:          envOr(getenv, "REDIS_URL", "redis://localhost:6379"),
		HyperliquidAPIKey: getenv("HYPERLIQUID_API_KEY"),
		DriftRPCURL:       getenv("DRIFT_RPC_URL"),
		SolanaRPCURL:      getenv("SOLANA_RPC_URL"),
		SolanaPrivateKey:  getenv("SOLANA_PRIVATE_KEY"),
		JupiterAPIURL:     envOr(getenv, "JUPITER_API_URL", "https://api.jup.ag"),
		ExecutionMode:     envOr(getenv, "EXECUTION_MODE", "paper"),
		WITSCountries:     envList(getenv, "WITS_COUNTRIES", []string{"USA", "CHN", "EU"}),
		WITSProducts:      envList(getenv, "WITS_PRODUCTS", []string{"TOTAL", "Capital", "Consumer", "Intermediate", "Raw"}),
		GDELTKeywords:     envList(getenv, "GDELT_KEYWORDS", []string{"tariff", "trade war", "import duty", "export ban", "sanctions", "trade policy"}),
		MaxLeverage:       envFloat(getenv, "MAX_LEVERAGE", 3.0),
		MaxMarginUsage:    envFloat(getenv, "MAX_MARGIN_USAGE", 0.6),
		MaxDailyLoss:      envFloat(getenv, "MAX_DAILY_LOSS", 500.0),
		CooldownSeconds:   envInt(getenv, "COOLDOWN_SECONDS", 300),
		PriceFreshnessThresholdS: envFloat(getenv, "PRICE_FRESHNESS_THRESHOLD_S", 60.0),
		PriceIntegrityBlockLive:  envBool(getenv, "PRICE_INTEGRITY_BLOCK_LIVE", true),
		LogLevel:          strings.ToUpper(envOr(getenv, "LOG_LEVEL", "INFO")),
	}

	if cfg.ExecutionMode != "paper" && cfg.ExecutionMode != "live" {
		cfg.ExecutionMode = "paper"
	}

	return cfg
}

// IsFeatureEnabled reports whether an arbitrary environment flag is set
// to a non-empty value — the same loose on/off switch config.py exposes
// for desk-side experiments that don't warrant a dedicated field.
func IsFeatureEnabled(getenv func(string) string, key string) bool {
	if getenv == nil {
		getenv = osGetenv
	}
	return getenv(key) != ""
}

// Summary is a loggable, secret-free view of Config for startup banners.
func (c Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"database_configured": c.DatabaseURL != "",
		"redis_url":           c.RedisURL,
		"execution_mode":      c.ExecutionMode,
		"hyperliquid_enabled": c.HyperliquidAPIKey != "",
		"drift_enabled":       c.DriftRPCURL != "",
		"solana_enabled":      c.SolanaRPCURL != "",
		"jupiter_api_url":     c.JupiterAPIURL,
		"wits_countries":      c.WITSCountries,
		"wits_products":       c.WITSProducts,
		"gdelt_keywords":      c.GDELTKeywords,
		"max_leverage":        c.MaxLeverage,
		"max_margin_usage":    c.MaxMarginUsage,
		"max_daily_loss":      c.MaxDailyLoss,
		"cooldown_seconds":    c.CooldownSeconds,
		"price_freshness_threshold_s": c.PriceFreshnessThresholdS,
		"price_integrity_block_live":  c.PriceIntegrityBlockLive,
		"log_level":           c.LogLevel,
	}
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(getenv func(string) string, key string, def float64) float64 {
	raw := getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(getenv func(string) string, key string, def bool) bool {
	raw := getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(getenv func(string) string, key string, def int) int {
	raw := getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envList(getenv func(string) string, key string, def []string) []string {
	raw := getenv(key)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
