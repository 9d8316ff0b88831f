package presale

import (
	"fmt"

	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/money"
)

// Input carries everything Validate needs so the check itself stays pure.
// Balances and prices are sampled by the caller; Validate never touches the
// network.
type Input struct {
	// RawAmount is the SOL amount exactly as the buyer typed it.
	RawAmount string

	// SolPriceUSD is the current SOL/USD price. Zero means no quote is
	// available yet, which fails well-formedness.
	SolPriceUSD float64

	// SpentUSD is what this wallet has already purchased, counted against
	// the allocation cap.
	SpentUSD float64

	// BalanceLamports is the wallet's last known SOL balance.
	BalanceLamports uint64

	Limits Limits
}

// Limits are the presale purchase bounds, taken from config.
type Limits struct {
	MinPurchaseUSD     float64
	MaxPurchaseUSD     float64
	AllocationCapUSD   float64 // 0 disables the cap
	FeeReserveLamports uint64
}

// Result reports the outcome of a validation pass. LimitUSD carries the
// violated bound for below_minimum, above_maximum, and above_allocation so
// handlers can echo it back verbatim.
type Result struct {
	OK       bool             `json:"ok"`
	Code     errors.ErrorCode `json:"code,omitempty"`
	Message  string           `json:"message,omitempty"`
	LimitUSD float64          `json:"limitUsd,omitempty"`
	USDValue float64          `json:"usdValue,omitempty"`
	Lamports uint64           `json:"lamports,omitempty"`
}

func ok(usdValue float64, lamports uint64) Result {
	return Result{OK: true, USDValue: usdValue, Lamports: lamports}
}

func fail(code errors.ErrorCode, msg string) Result {
	return Result{Code: code, Message: msg}
}

// Validate checks a purchase request in a fixed order: numeric
// well-formedness, then the minimum bound, the maximum bound, the per-wallet
// allocation cap, and finally the wallet balance. The first violation wins,
// so an absurd amount reports above_maximum rather than insufficient_balance.
func Validate(in Input) Result {
	lamports, err := money.LamportsFromSOL(in.RawAmount)
	if err != nil || lamports == 0 {
		return fail(errors.ErrCodeInvalidAmount, "enter a positive SOL amount")
	}
	if in.SolPriceUSD <= 0 {
		return fail(errors.ErrCodePriceUnavailable, "SOL price is unavailable, try again shortly")
	}

	usdValue := float64(lamports) / money.LamportsPerSOL * in.SolPriceUSD

	if usdValue < in.Limits.MinPurchaseUSD {
		r := fail(errors.ErrCodeBelowMinimum,
			fmt.Sprintf("minimum purchase is $%.2f", in.Limits.MinPurchaseUSD))
		r.LimitUSD = in.Limits.MinPurchaseUSD
		r.USDValue = usdValue
		return r
	}
	if in.Limits.MaxPurchaseUSD > 0 && usdValue > in.Limits.MaxPurchaseUSD {
		r := fail(errors.ErrCodeAboveMaximum,
			fmt.Sprintf("maximum purchase is $%.2f", in.Limits.MaxPurchaseUSD))
		r.LimitUSD = in.Limits.MaxPurchaseUSD
		r.USDValue = usdValue
		return r
	}
	if in.Limits.AllocationCapUSD > 0 && in.SpentUSD+usdValue > in.Limits.AllocationCapUSD {
		r := fail(errors.ErrCodeAboveAllocation,
			fmt.Sprintf("wallet allocation is capped at $%.2f", in.Limits.AllocationCapUSD))
		r.LimitUSD = in.Limits.AllocationCapUSD
		r.USDValue = usdValue
		return r
	}

	required := lamports + in.Limits.FeeReserveLamports
	if required < lamports { // overflow
		return fail(errors.ErrCodeInvalidAmount, "amount out of range")
	}
	if in.BalanceLamports < required {
		r := fail(errors.ErrCodeInsufficientBalance,
			fmt.Sprintf("wallet holds %s SOL, %s SOL needed including fees",
				money.SOLFromLamports(in.BalanceLamports), money.SOLFromLamports(required)))
		r.USDValue = usdValue
		return r
	}

	return ok(usdValue, lamports)
}

// MaxSpendable returns the largest lamport amount the wallet can put into a
// purchase after holding back the fee reserve. The returned amount is not a
// shortcut past Validate: callers feed it back through Validate like any
// hand-typed value.
func MaxSpendable(balanceLamports, feeReserveLamports uint64) uint64 {
	if balanceLamports <= feeReserveLamports {
		return 0
	}
	return balanceLamports - feeReserveLamports
}
