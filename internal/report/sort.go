// =============================================================================
// Fraksjonsoversikt - Row Ordering
// =============================================================================
//
// ORDER:
//   - Group 0: KG > 0, then group 1: ST > 0, then everything else
//   - Within a group: KG descending, then ST descending
//   - Remaining ties keep alphabetical order
//
// =============================================================================

package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SumLabel is the fraction label of the synthesized totals row.
const SumLabel = "SUM"

// Row is one line of the sorted report. Cells align with Table.Units.
type Row struct {
	Fraction string
	Cells    []Cell
	Sum      bool
}

// Table is the ordered report: fraction rows, then the SUM row.
type Table struct {
	Units []string
	Rows  []Row
}

// FractionRows returns every row except the SUM row.
func (t *Table) FractionRows() []Row {
	if n := len(t.Rows); n > 0 && t.Rows[n-1].Sum {
		return t.Rows[:n-1]
	}
	return t.Rows
}

// SumRow returns the totals row.
func (t *Table) SumRow() Row {
	return t.Rows[len(t.Rows)-1]
}

// SortRows orders the fraction rows and appends the SUM row.
//
// ORDERING:
//   - group 0: KG > 0
//   - group 1: KG <= 0 and ST > 0
//   - group 2: everything else
//   Within a group rows go by KG descending, then ST descending. Remaining
//   ties keep the matrix order (ascending fraction).
func SortRows(m *Matrix) *Table {
	type keyed struct {
		row   Row
		group int
		kg    decimal.Decimal
		st    decimal.Decimal
	}

	kgIdx, stIdx := -1, -1
	for i, u := range m.Units {
		switch u {
		case UnitKG:
			kgIdx = i
		case UnitST:
			stIdx = i
		}
	}
	at := func(cells []Cell, idx int) decimal.Decimal {
		if idx < 0 {
			return decimal.Zero
		}
		return cells[idx].OrZero()
	}

	rows := make([]keyed, 0, len(m.Fractions))
	for _, fraction := range m.Fractions {
		cells := make([]Cell, len(m.Units))
		for i, u := range m.Units {
			cells[i] = m.Cell(fraction, u)
		}

		k := keyed{
			row: Row{Fraction: fraction, Cells: cells},
			kg:  at(cells, kgIdx),
			st:  at(cells, stIdx),
		}
		switch {
		case k.kg.IsPositive():
			k.group = 0
		case k.st.IsPositive():
			k.group = 1
		default:
			k.group = 2
		}
		rows = append(rows, k)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if !a.kg.Equal(b.kg) {
			return a.kg.GreaterThan(b.kg)
		}
		return a.st.GreaterThan(b.st)
	})

	t := &Table{
		Units: append([]string(nil), m.Units...),
		Rows:  make([]Row, 0, len(rows)+1),
	}
	for _, k := range rows {
		t.Rows = append(t.Rows, k.row)
	}
	t.Rows = append(t.Rows, sumRow(t.Rows, len(t.Units)))
	return t
}

// sumRow adds every column, treating absent cells as zero.
func sumRow(rows []Row, width int) Row {
	cells := make([]Cell, width)
	for i := range cells {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.Cells[i].OrZero())
		}
		cells[i] = PresentValue(total)
	}
	return Row{Fraction: SumLabel, Cells: cells, Sum: true}
}
