package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value in atomic units of a specific asset.
// All arithmetic happens on int64 so purchase math never drifts through
// floating point at the base-unit boundary.
//
// Examples:
//   - $10.50 USD = Amount{Asset: USD, Atomic: 1050}        // cents
//   - 0.5 SOL    = Amount{Asset: SOL, Atomic: 500000000}   // lamports
type Amount struct {
	Asset  Asset
	Atomic int64
}

var (
	// ErrOverflow occurs when an operation would exceed int64 capacity.
	ErrOverflow = errors.New("money: arithmetic overflow")

	// ErrAssetMismatch occurs when operating on different assets.
	ErrAssetMismatch = errors.New("money: asset mismatch")

	// ErrInvalidFormat occurs when parsing fails.
	ErrInvalidFormat = errors.New("money: invalid format")
)

// Zero returns a zero amount for the given asset.
func Zero(asset Asset) Amount {
	return Amount{Asset: asset}
}

// New creates an Amount from atomic units.
func New(asset Asset, atomic int64) Amount {
	return Amount{Asset: asset, Atomic: atomic}
}

// FromMajor parses a major-unit decimal string ("1.5") into atomic units.
// Fractional digits beyond the asset's precision are dropped (floor), which
// is the documented rounding rule for converting SOL into lamports: the user
// is never charged more than the figure they typed.
func FromMajor(asset Asset, major string) (Amount, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return Amount{}, fmt.Errorf("%w: empty value", ErrInvalidFormat)
	}

	negative := false
	if strings.HasPrefix(major, "-") {
		negative = true
		major = major[1:]
	}

	parts := strings.Split(major, ".")
	if len(parts) > 2 {
		return Amount{}, fmt.Errorf("%w: too many decimal points", ErrInvalidFormat)
	}

	integerPart := parts[0]
	if integerPart == "" {
		integerPart = "0"
	}
	integerVal, err := strconv.ParseInt(integerPart, 10, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var fractionVal int64
	if len(parts) == 2 && parts[1] != "" {
		frac := parts[1]
		if len(frac) > int(asset.Decimals) {
			// Floor: truncate sub-atomic digits.
			frac = frac[:asset.Decimals]
		}
		if frac != "" {
			fractionVal, err = strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return Amount{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
			}
			// Scale up to full precision (e.g. "5" with 9 decimals → 500000000).
			for i := len(frac); i < int(asset.Decimals); i++ {
				fractionVal *= 10
			}
		}
	}

	multiplier := pow10(asset.Decimals)
	if integerVal != 0 && multiplier > math.MaxInt64/integerVal {
		return Amount{}, ErrOverflow
	}
	total := integerVal*multiplier + fractionVal
	if negative {
		total = -total
	}

	return Amount{Asset: asset, Atomic: total}, nil
}

// ToMajor renders the amount as a major-unit decimal string.
func (a Amount) ToMajor() string {
	if a.Asset.Decimals == 0 {
		return strconv.FormatInt(a.Atomic, 10)
	}

	divisor := pow10(a.Asset.Decimals)
	atomic := a.Atomic
	sign := ""
	if atomic < 0 {
		sign = "-"
		atomic = -atomic
	}

	integerPart := atomic / divisor
	fractionalPart := atomic % divisor

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(strconv.FormatInt(integerPart, 10))
	b.WriteByte('.')

	fracStr := strconv.FormatInt(fractionalPart, 10)
	for i := len(fracStr); i < int(a.Asset.Decimals); i++ {
		b.WriteByte('0')
	}
	b.WriteString(fracStr)
	return b.String()
}

// Float returns the major-unit value as a float64 for display boundaries.
// Never use the result for further arithmetic on atomic units.
func (a Amount) Float() float64 {
	return float64(a.Atomic) / float64(pow10(a.Asset.Decimals))
}

// Add returns the sum of two amounts of the same asset.
func (a Amount) Add(other Amount) (Amount, error) {
	if a.Asset.Code != other.Asset.Code {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrAssetMismatch, a.Asset.Code, other.Asset.Code)
	}
	result := a.Atomic + other.Atomic
	if (result > a.Atomic) != (other.Atomic > 0) && other.Atomic != 0 {
		return Amount{}, ErrOverflow
	}
	return Amount{Asset: a.Asset, Atomic: result}, nil
}

// Sub returns the difference of two amounts of the same asset.
func (a Amount) Sub(other Amount) (Amount, error) {
	if a.Asset.Code != other.Asset.Code {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrAssetMismatch, a.Asset.Code, other.Asset.Code)
	}
	result := a.Atomic - other.Atomic
	if (result < a.Atomic) != (other.Atomic > 0) && other.Atomic != 0 {
		return Amount{}, ErrOverflow
	}
	return Amount{Asset: a.Asset, Atomic: result}, nil
}

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a.Atomic > 0 }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.Atomic == 0 }

// LessThan reports a < other for the same asset.
func (a Amount) LessThan(other Amount) bool {
	return a.Asset.Code == other.Asset.Code && a.Atomic < other.Atomic
}

// GreaterThan reports a > other for the same asset.
func (a Amount) GreaterThan(other Amount) bool {
	return a.Asset.Code == other.Asset.Code && a.Atomic > other.Atomic
}

// String returns a human-readable representation, e.g. "1.500000000 SOL".
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.ToMajor(), a.Asset.Code)
}

func pow10(decimals uint8) int64 {
	result := int64(1)
	for i := uint8(0); i < decimals; i++ {
		result *= 10
	}
	return result
}
