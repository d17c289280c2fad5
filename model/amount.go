package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for balances and amounts.
const AmountScale = 2

// MaxAmount is the first value that no longer fits NUMERIC(20,2).
var MaxAmount = decimal.New(1, 18)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount has more than two decimal places")
	ErrAmountTooLarge    = errors.New("amount exceeds the maximum supported value")
	ErrAmountMalformed   = errors.New("amount is not a valid decimal number")
)

// maxAmountDigits is the number of integer digits below MaxAmount.
const maxAmountDigits = 18

// maxTrailingScale bounds how many fractional digits, trailing zeros
// included, an amount may be written with.
const maxTrailingScale = AmountScale + 16

// ValidateAmount checks that d is a strictly positive value representable
// with AmountScale fractional digits. The exponent and digit count are
// bounded before any rescaling arithmetic runs.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrAmountNotPositive
	}
	exp := d.Exponent()
	if exp > maxAmountDigits {
		return ErrAmountTooLarge
	}
	if exp < -maxTrailingScale {
		return ErrAmountPrecision
	}
	// d >= 10^(digits-1+exp).
	if d.NumDigits()-1+int(exp) >= maxAmountDigits {
		return ErrAmountTooLarge
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return ErrAmountPrecision
	}
	if d.GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// ParseAmount parses and validates a textual amount such as "50.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrAmountMalformed
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FitsBalance reports whether b can be stored as an account balance.
func FitsBalance(b decimal.Decimal) bool {
	return !b.IsNegative() && b.LessThan(MaxAmount)
}
