package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration.
// All env vars use the PRESALE_ prefix for namespace isolation.
func (c *Config) applyEnvOverrides() {
	// Server config
	setIfEnv(&c.Server.Address, "PRESALE_SERVER_ADDRESS")
	setIfEnv(&c.Server.RoutePrefix, "PRESALE_ROUTE_PREFIX")
	if c.Server.RoutePrefix != "" {
		c.Server.RoutePrefix = normalizeRoutePrefix(c.Server.RoutePrefix)
	}
	if v := os.Getenv("PRESALE_CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitAndTrim(v)
	}

	// Logging config
	setIfEnv(&c.Logging.Level, "PRESALE_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "PRESALE_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "PRESALE_ENVIRONMENT")

	// Presale parameters
	setIfEnv(&c.Presale.TokenSymbol, "PRESALE_TOKEN_SYMBOL")
	setFloatIfEnv(&c.Presale.TokenPriceUSD, "PRESALE_TOKEN_PRICE_USD")
	setFloatIfEnv(&c.Presale.MinPurchaseUSD, "PRESALE_MIN_PURCHASE_USD")
	setFloatIfEnv(&c.Presale.MaxPurchaseUSD, "PRESALE_MAX_PURCHASE_USD")
	setFloatIfEnv(&c.Presale.AllocationCapUSD, "PRESALE_ALLOCATION_CAP_USD")
	setFloatIfEnv(&c.Presale.FeeReserveSOL, "PRESALE_FEE_RESERVE_SOL")
	setIfEnv(&c.Presale.TreasuryAddress, "PRESALE_TREASURY_ADDRESS")
	setIntIfEnv(&c.Presale.VestingImmediatePercent, "PRESALE_VESTING_IMMEDIATE_PERCENT")
	setIntIfEnv(&c.Presale.MaxAttempts, "PRESALE_MAX_ATTEMPTS")

	// Solana config
	setIfEnv(&c.Solana.Network, "PRESALE_SOLANA_NETWORK")
	setIfEnv(&c.Solana.RPCURL, "PRESALE_SOLANA_RPC_URL")
	setIfEnv(&c.Solana.WSURL, "PRESALE_SOLANA_WS_URL")
	setIfEnv(&c.Solana.Commitment, "PRESALE_SOLANA_COMMITMENT")
	setBoolIfEnv(&c.Solana.SkipPreflight, "PRESALE_SOLANA_SKIP_PREFLIGHT")

	// Quote config
	setIfEnv(&c.Quote.SourceURL, "PRESALE_QUOTE_SOURCE_URL")
	setDurationIfEnv(&c.Quote.RefreshInterval, "PRESALE_QUOTE_REFRESH_INTERVAL")
	setDurationIfEnv(&c.Quote.Timeout, "PRESALE_QUOTE_TIMEOUT")

	// Wallet watch config
	setDurationIfEnv(&c.WalletWatch.PollInterval, "PRESALE_WALLET_POLL_INTERVAL")

	// Intake config
	setDurationIfEnv(&c.Intake.SubmitDelay, "PRESALE_INTAKE_SUBMIT_DELAY")

	// Content config
	setIfEnv(&c.Content.FilePath, "PRESALE_CONTENT_FILE")
}

// setIfEnv assigns the env value to target when the variable is set and non-empty.
func setIfEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setBoolIfEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}

func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}

func setFloatIfEnv(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*target = parsed
		}
	}
}

func setDurationIfEnv(target *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*target = Duration{Duration: parsed}
		}
	}
}

// normalizeRoutePrefix ensures the prefix starts with / and has no trailing /.
func normalizeRoutePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == "/" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(prefix, "/")
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
