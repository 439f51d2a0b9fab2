package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxUnitsExponent bounds the exponent of a parsed amount. A uint256 has at
// most 78 digits.
const maxUnitsExponent = 80

// FormatUnits renders a base-unit amount with the given decimal precision,
// trimming trailing zeros.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// ParseUnits converts a display amount such as "1.5" into base units with
// the given precision. Negative amounts and excess precision are errors.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q must not be negative", s)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}
	if exp := d.Exponent(); exp > maxUnitsExponent || exp < -maxUnitsExponent {
		return nil, fmt.Errorf("amount %q is out of range", s)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	v := scaled.BigInt()
	if v.BitLen() > 256 {
		return nil, fmt.Errorf("amount %q is out of range", s)
	}
	return v, nil
}
