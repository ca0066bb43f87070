package sheet

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// CSVContentType is the MIME type of the CSV download.
const CSVContentType = "text/csv; charset=utf-8"

// invoiceRecord is one CSV line in the invoice layout.
type invoiceRecord struct {
	Reference     string `csv:"Reference"`
	CodeEAN       string `csv:"Code EAN"`
	CustomCode    string `csv:"Custom Code"`
	Description   string `csv:"Description"`
	Origin        string `csv:"Origin"`
	Quantity      int64  `csv:"Quantity"`
	UnitPrice     string `csv:"Unit Price"`
	TotalPrice    string `csv:"Total Price"`
	InvoiceNumber string `csv:"Invoice Number"`
}

// proformaRecord is one CSV line in the proforma layout.
type proformaRecord struct {
	Reference   string `csv:"Reference"`
	CodeEAN     string `csv:"Code EAN"`
	Description string `csv:"Description"`
	Origin      string `csv:"Origin"`
	Quantity    int64  `csv:"Quantity"`
	UnitPrice   string `csv:"Unit Price"`
	TotalPrice  string `csv:"Total Price"`
}

// WriteCSV writes rows with the same columns as the workbook. Prices are
// written with a decimal point and at least two decimals.
func (w *Writer) WriteCSV(out io.Writer, rows []document.Row) error {
	var err error
	if IsInvoiceLayout(rows) {
		records := make([]invoiceRecord, len(rows))
		for i, r := range rows {
			records[i] = invoiceRecord{
				Reference:     r.Reference,
				CodeEAN:       r.CodeEAN,
				CustomCode:    r.CustomCode,
				Description:   r.Description,
				Origin:        r.Origin,
				Quantity:      r.Quantity,
				UnitPrice:     csvAmount(r.UnitPrice),
				TotalPrice:    csvAmount(r.TotalPrice),
				InvoiceNumber: r.InvoiceNumber,
			}
		}
		err = gocsv.Marshal(records, out)
	} else {
		records := make([]proformaRecord, len(rows))
		for i, r := range rows {
			records[i] = proformaRecord{
				Reference:   r.Reference,
				CodeEAN:     r.CodeEAN,
				Description: r.Description,
				Origin:      r.Origin,
				Quantity:    r.Quantity,
				UnitPrice:   csvAmount(r.UnitPrice),
				TotalPrice:  csvAmount(r.TotalPrice),
			}
		}
		err = gocsv.Marshal(records, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// csvAmount pads d to two decimals. Sub-cent digits are kept, never rounded.
func csvAmount(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}
