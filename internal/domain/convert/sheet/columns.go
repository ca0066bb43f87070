// Package sheet serializes extracted rows to a spreadsheet download.
package sheet

import (
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// Column headers, in output order.
var (
	InvoiceColumns = []string{
		"Reference", "Code EAN", "Custom Code", "Description", "Origin",
		"Quantity", "Unit Price", "Total Price", "Invoice Number",
	}
	ProformaColumns = []string{
		"Reference", "Code EAN", "Description", "Origin",
		"Quantity", "Unit Price", "Total Price",
	}
)

// IsInvoiceLayout reports whether rows are written with the invoice columns,
// which is the case as soon as one row carries an invoice number.
func IsInvoiceLayout(rows []document.Row) bool {
	for _, r := range rows {
		if r.InvoiceNumber != "" {
			return true
		}
	}
	return false
}

// Columns returns the header row for rows.
func Columns(rows []document.Row) []string {
	if IsInvoiceLayout(rows) {
		return InvoiceColumns
	}
	return ProformaColumns
}

// values renders r in column order. Quantities and prices stay numeric.
func values(r document.Row, invoice bool) []any {
	if invoice {
		return []any{
			r.Reference, r.CodeEAN, r.CustomCode, r.Description, r.Origin,
			r.Quantity, r.UnitPrice.InexactFloat64(), r.TotalPrice.InexactFloat64(), r.InvoiceNumber,
		}
	}
	return []any{
		r.Reference, r.CodeEAN, r.Description, r.Origin,
		r.Quantity, r.UnitPrice.InexactFloat64(), r.TotalPrice.InexactFloat64(),
	}
}
