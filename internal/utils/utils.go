package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// RemoveHexPrefix strips a leading "0x". When stripZero is set a leading
// "0x0" is stripped instead, if present.
func RemoveHexPrefix(s string, stripZero bool) string {
	if stripZero && (strings.HasPrefix(s, "0x0") || strings.HasPrefix(s, "0X0")) {
		return s[3:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// AddHexPrefix prepends "0x" unless s already carries it
func AddHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// Normalize0x0 rewrites a "0x0..." value as "0x...". The exchange stores
// stark keys and asset ids without the padding nibble.
func Normalize0x0(s string) string {
	if strings.HasPrefix(s, "0x0") || strings.HasPrefix(s, "0X0") {
		return "0x" + s[3:]
	}
	return s
}

// ParseUnits scales amount by 10^decimals and returns the integer value.
// It fails if amount has more fractional digits than decimals allows.
func ParseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals: %d", decimals)
	}
	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf(
			"amount %s has more than %d decimal places",
			amount.String(),
			decimals,
		)
	}
	return scaled.BigInt(), nil
}

// FormatUnits is the inverse of ParseUnits
func FormatUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

// TrimDecimal formats d without exponent and without trailing zeros
func TrimDecimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
