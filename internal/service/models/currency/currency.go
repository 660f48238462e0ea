package currency

import (
	"errors"
	"fmt"

	"golang.org/x/text/currency"
)

// Default is the currency catalog prices are expressed in.
var Default = currency.BRL

var ErrInvalidCurrency = errors.New("invalid currency")

// ParseCurrency parses an ISO 4217 code, falling back to Default for an empty string.
func ParseCurrency(s string) (currency.Unit, error) {
	if s == "" {
		return Default, nil
	}

	unit, err := currency.ParseISO(s)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}

	return unit, nil
}
