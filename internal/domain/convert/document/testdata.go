package document

import (
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

// TestDataGenerator builds realistic line items and the text lines an
// invoice or proforma would print for them.
type TestDataGenerator struct {
	amounts *money.TestDataGenerator
	faker   *gofakeit.Faker
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	amounts := money.NewTestDataGeneratorWithSeed(seed)
	return &TestDataGenerator{
		amounts: amounts,
		faker:   amounts.Faker(),
	}
}

// Reference generates a supplier article reference such as "KQT482".
func (g *TestDataGenerator) Reference() string {
	return strings.ToUpper(g.faker.LetterN(3)) + g.faker.DigitN(3)
}

// EAN generates a 13 digit barcode.
func (g *TestDataGenerator) EAN() string {
	return strconv.Itoa(g.faker.Number(1, 9)) + g.faker.DigitN(12)
}

// CustomCode generates an 8 digit customs tariff code.
func (g *TestDataGenerator) CustomCode() string {
	return strconv.Itoa(g.faker.Number(1, 9)) + g.faker.DigitN(7)
}

// Description generates an upper-case product description without digits.
func (g *TestDataGenerator) Description() string {
	return strings.ToUpper(g.faker.Adjective() + " " + g.faker.Noun())
}

// Origin generates an upper-case country name.
func (g *TestDataGenerator) Origin() string {
	return strings.ToUpper(g.faker.RandomString([]string{"France", "Italy", "Spain", "Switzerland", "Germany"}))
}

// InvoiceRow generates a complete invoice row whose total matches its quantity.
func (g *TestDataGenerator) InvoiceRow(invoiceNumber string) Row {
	qty := g.amounts.Quantity()
	unit := g.amounts.UnitPrice()
	return Row{
		Reference:     g.Reference(),
		CodeEAN:       g.EAN(),
		CustomCode:    g.CustomCode(),
		Description:   g.Description(),
		Quantity:      qty,
		UnitPrice:     unit,
		TotalPrice:    unit.Mul(decimal.NewFromInt(qty)),
		InvoiceNumber: invoiceNumber,
	}
}

// InvoiceRows generates count invoice rows with distinct references.
func (g *TestDataGenerator) InvoiceRows(invoiceNumber string, count int) []Row {
	rows := make([]Row, 0, count)
	seen := make(map[string]bool, count)
	for len(rows) < count {
		r := g.InvoiceRow(invoiceNumber)
		if seen[r.Reference] {
			continue
		}
		seen[r.Reference] = true
		rows = append(rows, r)
	}
	return rows
}

// InvoiceLine renders r the way the invoice table prints it.
func InvoiceLine(r Row, style money.Style) string {
	return strings.Join([]string{
		r.Reference,
		r.CodeEAN,
		r.CustomCode,
		strconv.FormatInt(r.Quantity, 10),
		money.FormatLocale(r.UnitPrice, style),
		money.FormatLocale(r.TotalPrice, style),
	}, "  ")
}

// ProformaLine renders r the way the proforma table prints it.
func ProformaLine(r Row, style money.Style) string {
	return strings.Join([]string{
		r.Reference,
		r.CodeEAN,
		money.FormatLocale(r.UnitPrice, style),
		strconv.FormatInt(r.Quantity, 10),
	}, "  ")
}
