package header

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

func TestParseSuffixPolicy(t *testing.T) {
	p, err := ParseSuffixPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SuffixPerPage, p)

	p, err = ParseSuffixPolicy(" WITH_HEADER ")
	require.NoError(t, err)
	assert.Equal(t, SuffixWithHeader, p)

	_, err = ParseSuffixPolicy("sometimes")
	assert.Error(t, err)
}

func TestApply_InvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"french", "FACTURE N° 123456 du 12/01/2024", "123456"},
		{"english", "Invoice number: 00998877", "00998877"},
		{"too short", "FACTURE 12345", ""},
		{"too far from label", "FACTURE " + strings.Repeat(".", 64) + " 123456", ""},
	}

	e := New(SuffixPerPage)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := e.Apply(document.NewContext(document.KindInvoice), tt.text)
			assert.Equal(t, tt.want, ctx.InvoiceBase)
		})
	}
}

func TestApply_ProformaOrderNumber(t *testing.T) {
	e := New(SuffixPerPage)

	ctx := e.Apply(document.NewContext(document.KindProforma), "ACCUSÉ DE RÉCEPTION\nN° DE COMMANDE : 4500123")
	assert.Equal(t, "4500123", ctx.InvoiceBase)

	ctx = e.Apply(document.NewContext(document.KindProforma), "PROFORMA INVOICE 7788990")
	assert.Equal(t, "7788990", ctx.InvoiceBase)

	ctx = e.Apply(document.NewContext(document.KindProforma), "Order Number 1234567")
	assert.Equal(t, "1234567", ctx.InvoiceBase)
}

func TestFold_LastWriteWins(t *testing.T) {
	e := New(SuffixPerPage)
	pages := []string{
		"FACTURE 111111\nPAYS D'ORIGINE : FRANCE",
		"no header here",
		"FACTURE 222222",
	}

	contexts := e.Fold(document.NewContext(document.KindInvoice), pages)
	require.Len(t, contexts, 3)

	assert.Equal(t, "111111", contexts[0].InvoiceBase)
	assert.Equal(t, "111111", contexts[1].InvoiceBase)
	assert.Equal(t, "222222", contexts[2].InvoiceBase)

	for _, c := range contexts {
		assert.Equal(t, "FRANCE", c.Origin)
	}
}

func TestFold_WithoutPaymentPerPage(t *testing.T) {
	pages := []string{
		"FACTURE 123456\nFACTURE SANS PAIEMENT",
		"continued lines",
	}

	contexts := New(SuffixPerPage).Fold(document.NewContext(document.KindInvoice), pages)
	assert.Equal(t, "123456PLV", contexts[0].InvoiceNumber())
	assert.Equal(t, "123456", contexts[1].InvoiceNumber())
}

func TestFold_WithoutPaymentWithHeader(t *testing.T) {
	pages := []string{
		"FACTURE 123456\nFACTURE SANS PAIEMENT",
		"continued lines",
		"INVOICE 654321",
	}

	contexts := New(SuffixWithHeader).Fold(document.NewContext(document.KindInvoice), pages)
	assert.Equal(t, "123456PLV", contexts[0].InvoiceNumber())
	assert.Equal(t, "123456PLV", contexts[1].InvoiceNumber())
	assert.Equal(t, "654321", contexts[2].InvoiceNumber())
}

func TestFold_SeedFromFilename(t *testing.T) {
	number, ok := FromFilename("scan_SIP-20240117.pdf")
	require.True(t, ok)
	assert.Equal(t, "20240117", number)

	seed := document.NewContext(document.KindInvoice)
	seed.InvoiceBase = number

	contexts := New(SuffixPerPage).Fold(seed, []string{"no number", "FACTURE 777777"})
	assert.Equal(t, "20240117", contexts[0].InvoiceBase)
	assert.Equal(t, "777777", contexts[1].InvoiceBase)

	_, ok = FromFilename("invoice.pdf")
	assert.False(t, ok)
}

func TestFold_OriginOnNextLine(t *testing.T) {
	pages := []string{
		"FACTURE 111111\nPAYS D'ORIGINE : FRANCE",
		"PAYS D'ORIGINE :\nITALIE",
	}

	contexts := New(SuffixPerPage).Fold(document.NewContext(document.KindInvoice), pages)
	assert.Equal(t, "FRANCE", contexts[0].Origin)
	assert.Equal(t, "ITALIE", contexts[1].Origin)
}

func TestFindOrigin(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"straight apostrophe", "PAYS D'ORIGINE : FRANCE", "FRANCE"},
		{"curly apostrophe", "Pays d’origine des marchandises: Italie  ", "Italie"},
		{"no apostrophe", "PAYS D ORIGINE: SUISSE", "SUISSE"},
		{"english", "Country of origin: Spain", "Spain"},
		{"value on the next line", "PAYS D'ORIGINE :\nFRANCE", "FRANCE"},
		{"blank line after the label", "PAYS D'ORIGINE :\n\nFRANCE", ""},
		{"absent", "FACTURE 123456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindOrigin(tt.text))
		})
	}
}
