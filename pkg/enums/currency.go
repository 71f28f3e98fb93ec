package enums

import "fmt"

// Currency identifies the settlement currency for an order.
type Currency string

const (
	CurrencyGHS Currency = "GHS"
)

var validCurrencies = []Currency{
	CurrencyGHS,
}

// IsValid reports whether the value matches a supported currency.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts raw input into Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q", value)
}
