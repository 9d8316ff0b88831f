package quote

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Amounts is the result of deriving purchase figures from raw user input.
type Amounts struct {
	AmountSOL   float64 `json:"amountSol"`
	USDValue    float64 `json:"usdValue"`
	TokenAmount uint64  `json:"tokenAmount"`
}

// DeriveAmounts converts raw input into a USD value and token quantity at
// the given SOL price. Pure: non-numeric, empty, or negative input yields
// zero amounts rather than an error, so the widget can recompute on every
// keystroke without special cases.
//
//	usdValue    = input × price
//	tokenAmount = floor(usdValue / tokenPriceUSD)
func DeriveAmounts(rawInput string, price, tokenPriceUSD float64) Amounts {
	input, err := strconv.ParseFloat(strings.TrimSpace(rawInput), 64)
	if err != nil || input <= 0 || math.IsNaN(input) || math.IsInf(input, 0) {
		return Amounts{}
	}
	if price <= 0 || tokenPriceUSD <= 0 {
		return Amounts{AmountSOL: input}
	}

	usdValue := input * price
	tokenAmount := uint64(math.Floor(usdValue / tokenPriceUSD))

	return Amounts{
		AmountSOL:   input,
		USDValue:    usdValue,
		TokenAmount: tokenAmount,
	}
}

// VestingBreakdown splits a token amount into the portion released at the
// token generation event and the portion vested linearly afterwards.
type VestingBreakdown struct {
	ImmediateTokens uint64        `json:"immediateTokens"`
	VestedTokens    uint64        `json:"vestedTokens"`
	VestingDuration time.Duration `json:"-"`
	VestingDays     int           `json:"vestingDays"`
}

// SplitVesting applies an immediate-release percentage to a token amount.
// The vested remainder absorbs any rounding so the two parts always sum to
// the full amount.
func SplitVesting(tokenAmount uint64, immediatePercent int, duration time.Duration) VestingBreakdown {
	if immediatePercent < 0 {
		immediatePercent = 0
	}
	if immediatePercent > 100 {
		immediatePercent = 100
	}

	immediate := tokenAmount * uint64(immediatePercent) / 100
	return VestingBreakdown{
		ImmediateTokens: immediate,
		VestedTokens:    tokenAmount - immediate,
		VestingDuration: duration,
		VestingDays:     int(duration.Hours() / 24),
	}
}
