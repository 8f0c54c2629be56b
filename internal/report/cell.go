// =============================================================================
// Fraksjonsoversikt - Cells
// =============================================================================

package report

import "github.com/shopspring/decimal"

// Cell is one aggregated value. An absent cell had no parseable quantity;
// a present cell may still hold zero.
type Cell struct {
	Value   decimal.Decimal
	Present bool
}

// Absent returns the empty cell.
func Absent() Cell { return Cell{} }

// PresentValue returns a present cell holding v.
func PresentValue(v decimal.Decimal) Cell {
	return Cell{Value: v, Present: true}
}

// OrZero returns the value, treating absent as zero.
func (c Cell) OrZero() decimal.Decimal {
	if !c.Present {
		return decimal.Zero
	}
	return c.Value
}
