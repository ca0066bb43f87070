package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

func TestContext_InvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"unknown", Context{Kind: KindInvoice}, ""},
		{"plain", Context{Kind: KindInvoice, InvoiceBase: "123456"}, "123456"},
		{"without payment", Context{Kind: KindInvoice, InvoiceBase: "123456", WithoutPayment: true}, "123456PLV"},
		{"suffix needs a base", Context{Kind: KindInvoice, WithoutPayment: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.InvoiceNumber())
		})
	}
}

func TestContext_Stamp(t *testing.T) {
	t.Run("invoice", func(t *testing.T) {
		ctx := Context{Kind: KindInvoice, InvoiceBase: "900100", Origin: "FRANCE"}
		r := ctx.Stamp(Row{Reference: "ABC123"})
		assert.Equal(t, "900100", r.InvoiceNumber)
		assert.Equal(t, "FRANCE", r.Origin)
		assert.Empty(t, r.OrderNumber)
	})

	t.Run("proforma keeps the order number aside", func(t *testing.T) {
		ctx := Context{Kind: KindProforma, InvoiceBase: "4500012"}
		r := ctx.Stamp(Row{Reference: "ABC123"})
		assert.Empty(t, r.InvoiceNumber)
		assert.Equal(t, "4500012", r.OrderNumber)
	})

	t.Run("row origin wins", func(t *testing.T) {
		ctx := Context{Kind: KindInvoice, Origin: "FRANCE"}
		r := ctx.Stamp(Row{Reference: "ABC123", Origin: "ITALY"})
		assert.Equal(t, "ITALY", r.Origin)
	})
}

func TestRow_Key(t *testing.T) {
	a := Row{Reference: "ABC123", CodeEAN: "1234567890123", InvoiceNumber: "1", Description: "A"}
	b := Row{Reference: "ABC123", CodeEAN: "1234567890123", InvoiceNumber: "1", Description: "B"}
	c := Row{Reference: "ABC123", CodeEAN: "1234567890123", InvoiceNumber: "1PLV"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRow_Key_Proforma(t *testing.T) {
	a := Row{Reference: "XYZ789", CodeEAN: "9876543210987", OrderNumber: "11111111", Quantity: 5}
	b := Row{Reference: "XYZ789", CodeEAN: "9876543210987", OrderNumber: "22222222", Quantity: 7}
	c := Row{Reference: "XYZ789", CodeEAN: "9876543210987", OrderNumber: "11111111", Quantity: 9}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), c.Key())
	assert.Equal(t, "11111111", a.Key().Number)
}

func TestClassificationError(t *testing.T) {
	err := &ClassificationError{Snippet: "DELIVERY NOTE"}
	assert.Equal(t, `unrecognized document type: "DELIVERY NOTE"`, err.Error())
}

func TestTestDataGenerator_InvoiceLine(t *testing.T) {
	gen := NewTestDataGeneratorWithSeed(7)
	rows := gen.InvoiceRows("123456", 20)
	require.Len(t, rows, 20)

	for _, r := range rows {
		assert.Regexp(t, `^[A-Z]{3}\d{3}$`, r.Reference)
		assert.Len(t, r.CodeEAN, 13)
		assert.True(t, r.TotalPrice.Equal(r.UnitPrice.Mul(decimal.NewFromInt(r.Quantity))))
		assert.Regexp(t, `^[A-Z]{3}\d{3}  \d{13}  \d{8}  \d+  [\d.,]+  [\d.,]+$`, InvoiceLine(r, money.European))
	}
}
