// =============================================================================
// Fraksjonsoversikt - Presentation
// =============================================================================
//
// String cells for the display table and typed cells for the workbook.
//
// =============================================================================

package report

import (
	"math"

	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/shopspring/decimal"
)

// Header cell of the fraction column and name of the exported sheet.
const (
	FractionHeader = "Fraksjon"
	SheetName      = "Fraksjonsoversikt"
)

// FormatOptions controls how a present non-whole value is rendered.
// The zero value keeps full precision.
type FormatOptions struct {
	// Fixed rounds non-whole values to Decimals places.
	Fixed bool

	// Decimals is the number of decimal places used when Fixed is set.
	Decimals int
}

// FormatCell renders a cell for display: absent is blank, whole numbers
// have no decimal point.
func FormatCell(c Cell, opt FormatOptions) string {
	if !c.Present {
		return ""
	}
	return formatValue(c.Value, opt)
}

func formatValue(v decimal.Decimal, opt FormatOptions) string {
	if v.IsInteger() {
		return v.String()
	}
	if opt.Fixed {
		places := opt.Decimals
		if places < 0 {
			places = 0
		}
		return v.StringFixed(int32(places))
	}
	return v.String()
}

// DisplayTable is the on-screen rendering of a report.
type DisplayTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Display renders every row, SUM included, with absent cells blank.
func Display(t *Table, opt FormatOptions) DisplayTable {
	out := DisplayTable{
		Header: append([]string{FractionHeader}, t.Units...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		line := make([]string, 0, len(r.Cells)+1)
		line = append(line, r.Fraction)
		for _, c := range r.Cells {
			line = append(line, FormatCell(c, opt))
		}
		out.Rows = append(out.Rows, line)
	}
	return out
}

// Export builds the spreadsheet sheet. Values stay numeric; absent cells
// are nil so the writer leaves them empty.
func Export(t *Table) types.Sheet {
	sheet := types.Sheet{
		Name:   SheetName,
		Header: append([]string{FractionHeader}, t.Units...),
		Rows:   make([][]any, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		line := make([]any, 0, len(r.Cells)+1)
		line = append(line, r.Fraction)
		for _, c := range r.Cells {
			line = append(line, exportValue(c))
		}
		sheet.Rows = append(sheet.Rows, line)
	}
	return sheet
}

func exportValue(c Cell) any {
	if !c.Present {
		return nil
	}
	if c.Value.IsInteger() {
		if c.Value.GreaterThanOrEqual(decimal.NewFromInt(math.MinInt64)) &&
			c.Value.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
			return c.Value.IntPart()
		}
	}
	return c.Value.InexactFloat64()
}
