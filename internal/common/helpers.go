package common

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	GweiDecimals  = 9  // 1 gwei = 10^9 wei
	EtherDecimals = 18 // 1 ether = 10^18 wei
)

// MaxUint256 is the largest value a transaction can carry
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

var unitDecimals = map[string]int{
	"wei":   0,
	"gwei":  GweiDecimals,
	"eth":   EtherDecimals,
	"ether": EtherDecimals,
}

// WeiToEther converts wei to an ether string without float precision loss
func WeiToEther(wei *big.Int) string {
	return formatWithDecimals(wei, EtherDecimals)
}

// ParseAmount parses "<number> [unit]" into wei. Unit is one of wei, gwei,
// eth, ether (case-insensitive); a bare number is wei.
// Example: ParseAmount("1.5 gwei") = 1500000000
func ParseAmount(s string) (*big.Int, error) {
	fields := strings.Fields(strings.ToLower(s))

	var number, unit string
	switch len(fields) {
	case 1:
		number, unit = splitUnitSuffix(fields[0])
	case 2:
		number, unit = fields[0], fields[1]
	default:
		return nil, fmt.Errorf("amount must be '<number> [wei|gwei|ether]'")
	}

	decimals, ok := unitDecimals[unit]
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", unit)
	}

	value, err := parseWithDecimals(number, decimals)
	if err != nil {
		return nil, err
	}
	if value.Cmp(MaxUint256) > 0 {
		return nil, fmt.Errorf("amount exceeds 256 bits")
	}
	return value, nil
}

// splitUnitSuffix splits "10gwei" into "10", "gwei"; a bare number gets unit wei
func splitUnitSuffix(s string) (string, string) {
	for _, unit := range []string{"ether", "gwei", "wei", "eth"} {
		if strings.HasSuffix(s, unit) {
			return strings.TrimSuffix(s, unit), unit
		}
	}
	return s, "wei"
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value *big.Int, decimals int) string {
	if value == nil {
		value = new(big.Int)
	}
	sign := ""
	if value.Sign() < 0 {
		sign = "-"
	}
	s := new(big.Int).Abs(value).String()

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return sign + s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point.
// Fractions finer than decimals are rejected rather than truncated.
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid decimal format")
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("invalid number %q", s)
	}

	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return nil, fmt.Errorf("more than %d decimal places", decimals)
		}
		frac = frac[:decimals]
	}
	// Pad fractional part to exact decimals
	frac += strings.Repeat("0", decimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
