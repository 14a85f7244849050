/*
Package rates provides the pricing rule model and the rate resolver.

PURPOSE:
  Turns a room type's base nightly rate into the effective rate for one stay
  date, given the property's set of time-bounded, prioritized pricing rules
  (seasons, discounts, promotions).

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A decimal amount in a property's operating currency
  - Currency: ISO-4217 code that fixes the minor-unit precision

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64
  2. Rounding: Half-to-even at the currency's minor units, applied once
  3. Purity: Nothing in this package does I/O or reads the clock

USAGE:
  base := rates.NewMoney("120", "EUR")
  price := rates.Resolve(base, "doble", rates.NewDate(2024, time.July, 15), rules)
  fmt.Println(price) // 156.00

SEE ALSO:
  - rule.go: PricingRule and the Matches predicate
  - resolve.go: Rule selection and price adjustment
  - store.go: Rule Store interfaces
*/
package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

// Currency is an ISO-4217 currency code.
type Currency string

// DefaultCurrency is used when a property does not declare one.
const DefaultCurrency Currency = "EUR"

var zeroDecimalCurrencies = map[Currency]bool{
	"JPY": true, "KRW": true, "CLP": true, "PYG": true, "VND": true, "ISK": true,
}

var threeDecimalCurrencies = map[Currency]bool{
	"BHD": true, "KWD": true, "OMR": true, "JOD": true, "TND": true,
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// MinorUnits returns the number of decimal places used by the currency.
func (c Currency) MinorUnits() int32 {
	switch {
	case zeroDecimalCurrencies[c]:
		return 0
	case threeDecimalCurrencies[c]:
		return 3
	default:
		return 2
	}
}

// Valid reports whether the code looks like an ISO-4217 code.
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// =============================================================================
// MONEY
// =============================================================================

// Money is an amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney parses a decimal string. An unparseable amount yields zero.
func NewMoney(amount string, currency Currency) Money {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		d = decimal.Zero
	}
	return Money{Amount: d, Currency: currency}
}

// NewMoneyFromDecimal wraps an existing decimal.
func NewMoneyFromDecimal(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// ParseMoney parses a decimal string, returning the parse error.
func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: d, Currency: currency}, nil
}

// MustParseDecimal parses a decimal literal and panics if it is malformed.
// Use it for constants in code, never for user input.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (m Money) Zero() Money        { return Money{Amount: decimal.Zero, Currency: m.Currency} }
func (m Money) IsNegative() bool   { return m.Amount.IsNegative() }
func (m Money) IsZero() bool       { return m.Amount.IsZero() }
func (m Money) Equal(o Money) bool { return m.Currency == o.Currency && m.Amount.Equal(o.Amount) }

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}
}

func (m Money) Mul(f decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(f), Currency: m.Currency}
}

// Round rounds half-to-even to the currency's minor units.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.RoundBank(m.Currency.MinorUnits()), Currency: m.Currency}
}

// ClampNonNegative returns zero for negative amounts.
func (m Money) ClampNonNegative() Money {
	if m.Amount.IsNegative() {
		return m.Zero()
	}
	return m
}

// String prints the amount with exactly the currency's minor-unit digits.
func (m Money) String() string {
	return m.Amount.StringFixedBank(m.Currency.MinorUnits())
}
