package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. Presale parameters
// match the reference widget: $0.0001 token, $150 minimum, $25,000 maximum,
// 40% released immediately with the remainder vested over 12 months.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  Duration{Duration: 15 * time.Second},
			WriteTimeout: Duration{Duration: 15 * time.Second},
			IdleTimeout:  Duration{Duration: 60 * time.Second},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Environment: "development",
		},
		Presale: PresaleConfig{
			TokenSymbol:             "EDU",
			TokenPriceUSD:           0.0001,
			MinPurchaseUSD:          150,
			MaxPurchaseUSD:          25000,
			TotalSupply:             10_000_000_000,
			VestingImmediatePercent: 40,
			VestingDuration:         Duration{Duration: 365 * 24 * time.Hour},
			AllocationCapUSD:        0,
			FeeReserveSOL:           0.01,
			SessionTTL:              Duration{Duration: 30 * time.Minute},
			MaxAttempts:             3,
		},
		Solana: SolanaConfig{
			Network:    "mainnet-beta",
			RPCURL:     "https://api.mainnet-beta.solana.com",
			WSURL:      "wss://api.mainnet-beta.solana.com",
			Commitment: "confirmed",
		},
		Quote: QuoteConfig{
			SourceURL:       "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd",
			RefreshInterval: Duration{Duration: 5 * time.Minute},
			Timeout:         Duration{Duration: 5 * time.Second},
		},
		WalletWatch: WalletWatchConfig{
			PollInterval: Duration{Duration: 30 * time.Second},
			IdleTTL:      Duration{Duration: 15 * time.Minute},
			MaxTracked:   1000,
		},
		Intake: IntakeConfig{
			SubmitDelay: Duration{Duration: 900 * time.Millisecond},
		},
		RateLimit: RateLimitConfig{
			GlobalEnabled:    true,
			GlobalLimit:      1000,
			GlobalWindow:     Duration{Duration: 1 * time.Minute},
			PerWalletEnabled: true,
			PerWalletLimit:   60,
			PerWalletWindow:  Duration{Duration: 1 * time.Minute},
			PerIPEnabled:     true,
			PerIPLimit:       120,
			PerIPWindow:      Duration{Duration: 1 * time.Minute},
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled: true,
			SolanaRPC: BreakerServiceConfig{
				MaxRequests:         3,
				Interval:            Duration{Duration: 60 * time.Second},
				Timeout:             Duration{Duration: 30 * time.Second},
				ConsecutiveFailures: 5,
				FailureRatio:        0.5,
				MinRequests:         10,
			},
			PriceFeed: BreakerServiceConfig{
				MaxRequests:         2,
				Interval:            Duration{Duration: 60 * time.Second},
				Timeout:             Duration{Duration: 60 * time.Second},
				ConsecutiveFailures: 3,
				FailureRatio:        0.5,
				MinRequests:         5,
			},
		},
	}
}

// parseFile reads and unmarshals a YAML configuration file.
func (c *Config) parseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}
