package core

import "github.com/shopspring/decimal"

// ParseAmount parses a decimal string used for listing prices and offer
// amounts. Negative values are rejected.
func ParseAmount(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ErrValidation("must be a valid decimal number")
	}
	if d.IsNegative() {
		return decimal.Zero, ErrValidation("amount must not be negative")
	}
	return d, nil
}
