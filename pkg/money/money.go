// Package money provides locale-aware amount parsing and currency-safe display
// for invoice line items. Amounts are carried as shopspring/decimal values so that
// computed totals never drift, and rendered through go-money for summaries.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	EUR = "EUR" // Euro
	USD = "USD" // US Dollar
	GBP = "GBP" // British Pound
	CHF = "CHF" // Swiss Franc
)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision calculations.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal value, rounding to the
// currency's minor unit. Unknown currencies fall back to EUR.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode = EUR
		currency = money.GetCurrency(EUR)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns a formatted string for display (e.g., "€1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}
