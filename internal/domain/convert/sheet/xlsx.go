package sheet

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

const (
	DataSheet    = "Extracted Data"
	SummarySheet = "Summary"

	// XLSXContentType is the MIME type of the workbook download.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var summaryColumns = []string{"Document", "Lines", "Quantity", "Total", "Total (display)"}

// Writer renders rows as a workbook or CSV.
type Writer struct {
	currency string
}

// NewWriter creates a writer that labels summary totals in currency.
func NewWriter(currency string) *Writer {
	if currency == "" {
		currency = money.EUR
	}
	return &Writer{currency: currency}
}

// WriteXLSX writes a workbook with one header row and one row per line item,
// followed by a per-document summary sheet.
func (w *Writer) WriteXLSX(out io.Writer, rows []document.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	invoice := IsInvoiceLayout(rows)
	if err := writeTable(f, DataSheet, Columns(rows), bold, len(rows), func(i int) []any {
		return values(rows[i], invoice)
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	groups := w.summarize(rows, invoice)
	if err := writeTable(f, SummarySheet, summaryColumns, bold, len(groups), func(i int) []any {
		g := groups[i]
		return []any{g.key, g.lines, g.quantity, g.total.InexactFloat64(), g.display}
	}); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []string, headerStyle, n int, row func(int) []any) error {
	headerValues := make([]any, len(header))
	for i, h := range header {
		headerValues[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerValues); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}

	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := row(i)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

type summaryGroup struct {
	key      string
	lines    int
	quantity int64
	total    decimal.Decimal
	display  string
}

// summarize totals rows per invoice number, or per order number for proformas,
// in order of first appearance.
func (w *Writer) summarize(rows []document.Row, invoice bool) []summaryGroup {
	index := make(map[string]int)
	var groups []summaryGroup
	sums := make([]*money.Money, 0)

	for _, r := range rows {
		key := r.OrderNumber
		if invoice {
			key = r.InvoiceNumber
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, summaryGroup{key: key})
			sums = append(sums, money.Zero(w.currency))
		}

		groups[i].lines++
		groups[i].quantity += r.Quantity
		groups[i].total = groups[i].total.Add(r.TotalPrice)
		if sum, err := sums[i].Add(money.NewFromDecimal(r.TotalPrice, w.currency)); err == nil {
			sums[i] = sum
		}
	}

	for i := range groups {
		groups[i].display = sums[i].Display()
	}
	return groups
}
