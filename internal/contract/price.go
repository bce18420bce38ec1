// internal/contract/price.go
package contract

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// WeiPerFiatUnit fixes the display rate: 1 fiat unit = 0.000001 ETH.
var WeiPerFiatUnit = big.NewInt(1_000_000_000_000)

// fiatExponent places one fiat unit at the sixth decimal of an ether.
const fiatExponent = -6

// FiatToNative converts a fiat price to wei. The conversion is exact, so
// NativeToFiat(FiatToNative(p)) == p for every p >= 0.
func FiatToNative(fiat int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(fiat), WeiPerFiatUnit)
}

// NativeToFiat converts wei to fiat units, flooring partial units.
func NativeToFiat(wei *big.Int) int64 {
	if wei == nil {
		return 0
	}
	return new(big.Int).Div(wei, WeiPerFiatUnit).Int64()
}

// FiatToNativeDisplay renders the ether equivalent of a fiat price with six
// decimals, e.g. 10000 -> "0.010000".
func FiatToNativeDisplay(fiat int64) string {
	return decimal.New(fiat, fiatExponent).StringFixed(-fiatExponent)
}
