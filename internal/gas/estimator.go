// Package gas computes simulated gas fees for transfers.
package gas

import "github.com/shopspring/decimal"

// DefaultPriceGwei is the simulated gas price applied when the caller does
// not supply one.
const DefaultPriceGwei = 30

// Base gas units per asset type.
const (
	baseUnitsETH   = 21000
	baseUnitsOther = 140
)

// Estimate returns the simulated fee for a transfer of the given asset type:
// base units × price (gwei) × 1e-9, rounded to 8 fractional digits.
func Estimate(cryptoType string, priceGwei int64) decimal.Decimal {
	units := int64(baseUnitsOther)
	if cryptoType == "ETH" {
		units = baseUnitsETH
	}
	return decimal.NewFromInt(units * priceGwei).Shift(-9).Round(8)
}

// Total returns amount + fee rounded to 8 fractional digits.
func Total(amount, fee decimal.Decimal) decimal.Decimal {
	return amount.Add(fee).Round(8)
}
