package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// finalize validates the assembled configuration and fails fast on
// inconsistent presale parameters.
func (c *Config) finalize() error {
	if c.Server.Address == "" {
		return fmt.Errorf("config: server address required")
	}

	p := c.Presale
	if p.TokenPriceUSD <= 0 {
		return fmt.Errorf("config: token price must be positive, got %v", p.TokenPriceUSD)
	}
	if p.MinPurchaseUSD < 0 || p.MaxPurchaseUSD < 0 {
		return fmt.Errorf("config: purchase bounds must be non-negative")
	}
	// MaxPurchaseUSD of 0 means no upper bound.
	if p.MaxPurchaseUSD > 0 && p.MinPurchaseUSD > p.MaxPurchaseUSD {
		return fmt.Errorf("config: min purchase %v exceeds max purchase %v", p.MinPurchaseUSD, p.MaxPurchaseUSD)
	}
	if p.VestingImmediatePercent < 0 || p.VestingImmediatePercent > 100 {
		return fmt.Errorf("config: vesting immediate percent must be within [0,100], got %d", p.VestingImmediatePercent)
	}
	if p.AllocationCapUSD < 0 {
		return fmt.Errorf("config: allocation cap must be non-negative")
	}
	if p.FeeReserveSOL < 0 {
		return fmt.Errorf("config: fee reserve must be non-negative")
	}
	if p.MaxAttempts <= 0 {
		c.Presale.MaxAttempts = 3
	}
	if p.TreasuryAddress != "" {
		if _, err := solana.PublicKeyFromBase58(p.TreasuryAddress); err != nil {
			return fmt.Errorf("config: invalid treasury address: %w", err)
		}
	}

	if c.Solana.RPCURL == "" {
		return fmt.Errorf("config: solana rpc url required")
	}
	if c.Quote.SourceURL == "" {
		return fmt.Errorf("config: quote source url required")
	}

	return nil
}
