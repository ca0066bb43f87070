package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errNegative = errors.New("negative value")
	errNotDigit = errors.New("not a whole number")
)

// FormatError reports a numeric field that could not be parsed.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Style describes how a locale writes numbers.
type Style struct {
	Decimal   byte
	Thousands byte
}

var (
	// European writes 1.234,56
	European = Style{Decimal: ',', Thousands: '.'}
	// English writes 1,234.56
	English = Style{Decimal: '.', Thousands: ','}
)

// symbols stripped before parsing; invoices print them next to the figure.
var symbols = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"€", "",
	"$", "",
	"£", "",
	"EUR", "",
	"USD", "",
)

// ParseAmount parses a price as printed on a French or English invoice.
//
// When both separators are present the one appearing first is the thousands
// separator. A lone separator that appears once is the decimal point; one that
// repeats is a thousands separator. Empty input parses as zero.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	clean := symbols.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, nil
	}

	comma := strings.LastIndexByte(clean, ',')
	dot := strings.LastIndexByte(clean, '.')

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case dot >= 0:
		if strings.Count(clean, ".") > 1 {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, &FormatError{Field: field, Value: s, Err: err}
	}
	if d.IsNegative() {
		return decimal.Zero, &FormatError{Field: field, Value: s, Err: errNegative}
	}
	return d, nil
}

// ParseQuantity parses a unit count, dropping grouping separators and spaces.
// Empty input parses as zero.
func ParseQuantity(field, s string) (int64, error) {
	clean := strings.NewReplacer(".", "", ",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, nil
	}

	for _, r := range clean {
		if r < '0' || r > '9' {
			return 0, &FormatError{Field: field, Value: s, Err: errNotDigit}
		}
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, &FormatError{Field: field, Value: s, Err: err}
	}
	return n, nil
}

// FormatLocale renders d with two decimals and thousands grouping in the given style.
func FormatLocale(d decimal.Decimal, style Style) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(style.Thousands)
		}
		b.WriteRune(r)
	}
	b.WriteByte(style.Decimal)
	b.WriteString(fracPart)
	return b.String()
}
