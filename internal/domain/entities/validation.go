package entities

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errAmountRequired    = errors.New("amount must be greater than zero")
	errAmountPrecision   = errors.New("amounts may have at most 2 decimal places")
	errQuantityInvalid   = errors.New("quantity must be at least 1")
	errUnitPriceInvalid  = errors.New("unitPrice must not be negative")
	errPartnersInvalid   = errors.New("requiredPartners must be at least 1")
	errReferenceRequired = errors.New("reference is required")
)

// moneyScale is the number of decimal places stored and charged
const moneyScale = 2

// hasMoneyScale reports whether d needs no rounding to be stored or
// converted to minor units.
func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}
