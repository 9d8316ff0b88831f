package money

// Asset describes a currency or token and its atomic precision.
type Asset struct {
	Code     string
	Decimals uint8
}

// Assets used by the presale flow. The presale token itself is counted in
// whole tokens (purchases always floor to an integer token quantity).
var (
	USD = Asset{Code: "USD", Decimals: 2}
	SOL = Asset{Code: "SOL", Decimals: 9}
)

// LamportsPerSOL is the fixed native-unit conversion constant.
const LamportsPerSOL = 1_000_000_000

// LamportsFromSOL converts a human-readable SOL string into lamports using
// integer arithmetic, flooring any sub-lamport fraction.
func LamportsFromSOL(sol string) (uint64, error) {
	amt, err := FromMajor(SOL, sol)
	if err != nil {
		return 0, err
	}
	if amt.Atomic < 0 {
		return 0, ErrInvalidFormat
	}
	return uint64(amt.Atomic), nil
}

// SOLFromLamports renders lamports as a SOL decimal string.
func SOLFromLamports(lamports uint64) string {
	return Amount{Asset: SOL, Atomic: int64(lamports)}.ToMajor()
}
