// internal/wallet/units.go
package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// FormatEther renders a wei amount in ether without losing precision. Whole
// amounts keep one decimal place ("1.0").
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(wei, -etherDecimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseEther converts a non-negative decimal ether string to wei.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty ether amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", s, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("ether amount %q is negative", s)
	}
	wei := amount.Shift(etherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("ether amount %q has more than %d decimals", s, etherDecimals)
	}
	return wei.BigInt(), nil
}
