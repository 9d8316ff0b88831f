package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support string based YAML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration values expressed as Go-style strings or numbers interpreted as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err == nil {
			d.Duration = parsed
			return nil
		}
		secs, convErr := time.ParseDuration(fmt.Sprintf("%ss", raw))
		if convErr == nil {
			d.Duration = secs
			return nil
		}
		return fmt.Errorf("invalid duration value %q: %w", raw, err)
	default:
		return fmt.Errorf("unsupported duration node kind: %v", value.Kind)
	}
}

// MarshalYAML renders the duration as a string to keep config edits human-friendly.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds application level configuration aggregated from file and environment variables.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Presale        PresaleConfig        `yaml:"presale"`
	Solana         SolanaConfig         `yaml:"solana"`
	Quote          QuoteConfig          `yaml:"quote"`
	WalletWatch    WalletWatchConfig    `yaml:"wallet_watch"`
	Intake         IntakeConfig         `yaml:"intake"`
	Content        ContentConfig        `yaml:"content"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RoutePrefix        string   `yaml:"route_prefix"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // json | console
	Environment string `yaml:"environment"`
}

// PresaleConfig holds the immutable presale parameters. Loaded once at
// startup and passed into services; never mutated afterwards.
type PresaleConfig struct {
	TokenSymbol             string   `yaml:"token_symbol"`
	TokenPriceUSD           float64  `yaml:"token_price_usd"`
	MinPurchaseUSD          float64  `yaml:"min_purchase_usd"`
	MaxPurchaseUSD          float64  `yaml:"max_purchase_usd"`
	TotalSupply             uint64   `yaml:"total_supply"`
	VestingImmediatePercent int      `yaml:"vesting_immediate_percent"`
	VestingDuration         Duration `yaml:"vesting_duration"`
	TreasuryAddress         string   `yaml:"treasury_address"`
	AllocationCapUSD        float64  `yaml:"allocation_cap_usd"` // 0 = unlimited
	FeeReserveSOL           float64  `yaml:"fee_reserve_sol"`    // kept back by the MAX helper
	SessionTTL              Duration `yaml:"session_ttl"`
	MaxAttempts             int      `yaml:"max_attempts"` // consecutive failures before support state
}

// SolanaConfig holds chain RPC configuration.
type SolanaConfig struct {
	Network       string `yaml:"network"`
	RPCURL        string `yaml:"rpc_url"`
	WSURL         string `yaml:"ws_url"`
	Commitment    string `yaml:"commitment"`
	SkipPreflight bool   `yaml:"skip_preflight"`
}

// QuoteConfig holds the SOL price feed configuration.
type QuoteConfig struct {
	SourceURL       string   `yaml:"source_url"`
	RefreshInterval Duration `yaml:"refresh_interval"`
	Timeout         Duration `yaml:"timeout"`
}

// WalletWatchConfig holds wallet snapshot polling configuration. Wallets
// nobody has requested within IdleTTL are dropped from the poll set, and
// MaxTracked caps its size.
type WalletWatchConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
	IdleTTL      Duration `yaml:"idle_ttl"`
	MaxTracked   int      `yaml:"max_tracked"`
}

// IntakeConfig holds post-purchase contact intake configuration.
// Submission has no backend sink; it is acknowledged after SubmitDelay.
type IntakeConfig struct {
	SubmitDelay Duration `yaml:"submit_delay"`
}

// ContentConfig holds the static content source configuration.
type ContentConfig struct {
	FilePath string `yaml:"file_path"` // optional YAML file overriding the built-in content
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	GlobalEnabled    bool     `yaml:"global_enabled"`
	GlobalLimit      int      `yaml:"global_limit"`
	GlobalWindow     Duration `yaml:"global_window"`
	PerWalletEnabled bool     `yaml:"per_wallet_enabled"`
	PerWalletLimit   int      `yaml:"per_wallet_limit"`
	PerWalletWindow  Duration `yaml:"per_wallet_window"`
	PerIPEnabled     bool     `yaml:"per_ip_enabled"`
	PerIPLimit       int      `yaml:"per_ip_limit"`
	PerIPWindow      Duration `yaml:"per_ip_window"`
}

// CircuitBreakerConfig holds circuit breaker configuration per upstream.
type CircuitBreakerConfig struct {
	Enabled   bool                 `yaml:"enabled"`
	SolanaRPC BreakerServiceConfig `yaml:"solana_rpc"`
	PriceFeed BreakerServiceConfig `yaml:"price_feed"`
}

// BreakerServiceConfig configures a single circuit breaker.
type BreakerServiceConfig struct {
	MaxRequests         uint32   `yaml:"max_requests"`
	Interval            Duration `yaml:"interval"`
	Timeout             Duration `yaml:"timeout"`
	ConsecutiveFailures uint32   `yaml:"consecutive_failures"`
	FailureRatio        float64  `yaml:"failure_ratio"`
	MinRequests         uint32   `yaml:"min_requests"`
}
