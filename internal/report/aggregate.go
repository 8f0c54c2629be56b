// =============================================================================
// Fraksjonsoversikt - Aggregator
// =============================================================================
//
// One pass over the source rows builds an immutable Matrix: the sum and the
// presence of a quantity for every (fraction, unit) pair. A pair without a
// single parseable quantity stays absent, which is not the same as zero.
//
// =============================================================================

package report

import (
	"sort"

	"github.com/TeoCir/IsekkKran/internal/validation"
)

// SourceRow is one disposal line item as read from the input table.
type SourceRow struct {
	Designation      string
	MaterialCardText string
	TargetQuantity   string
	UnitCode         string
}

// Stats describes what happened to the input rows during aggregation.
type Stats struct {
	// InputRows is the number of rows handed to Aggregate.
	InputRows int

	// DroppedUnitRows counts rows whose unit normalized to nothing.
	DroppedUnitRows int

	// DroppedFractionRows counts rows whose derived fraction was empty.
	DroppedFractionRows int

	// UnparsedQuantities counts kept rows whose quantity was not a number.
	UnparsedQuantities int

	// UnitsFound is the UnitOrder of every usable unit in the data.
	UnitsFound []string
}

// Matrix is the fraction × unit table of aggregated cells. It is not
// modified after Aggregate returns; WithUnits builds a new one.
type Matrix struct {
	// Fractions lists the row keys in ascending byte order.
	Fractions []string

	// Units lists the columns in UnitOrder.
	Units []string

	// Stats is filled in by Aggregate.
	Stats Stats

	cells map[string]map[string]Cell
}

// Cell returns the cell at (fraction, unit). Pairs without data are absent.
func (m *Matrix) Cell(fraction, unit string) Cell {
	if c, ok := m.cells[fraction][unit]; ok {
		return c
	}
	return Absent()
}

// Aggregate sums quantities per (fraction, unit) in a single pass.
//
// Rows without a usable unit or with an empty fraction are skipped. A row
// whose quantity does not parse still creates its fraction, but adds
// nothing to the sum and does not make the cell present.
func Aggregate(rows []SourceRow) *Matrix {
	m := &Matrix{
		cells: make(map[string]map[string]Cell),
	}
	m.Stats.InputRows = len(rows)

	units := make(map[string]bool)

	for _, row := range rows {
		unit, ok := NormalizeUnit(row.UnitCode)
		if !ok {
			m.Stats.DroppedUnitRows++
			continue
		}

		fraction := DeriveFraction(row.Designation, row.MaterialCardText)
		if fraction == "" {
			m.Stats.DroppedFractionRows++
			continue
		}

		byUnit, exists := m.cells[fraction]
		if !exists {
			byUnit = make(map[string]Cell)
			m.cells[fraction] = byUnit
			m.Fractions = append(m.Fractions, fraction)
		}
		units[unit] = true

		qty, ok := validation.ParseQuantity(row.TargetQuantity)
		if !ok {
			m.Stats.UnparsedQuantities++
			continue
		}

		cell := byUnit[unit]
		byUnit[unit] = PresentValue(cell.Value.Add(qty))
	}

	found := make([]string, 0, len(units))
	for u := range units {
		found = append(found, u)
	}

	sort.Strings(m.Fractions)
	m.Units = UnitOrder(found)
	m.Stats.UnitsFound = m.Units

	return m
}

// WithUnits returns a copy of the matrix restricted to the given units,
// kept in UnitOrder. Units not present in the data are ignored. Fractions
// are kept even when all of their remaining cells are absent.
func (m *Matrix) WithUnits(units []string) *Matrix {
	want := make(map[string]bool, len(units))
	for _, u := range units {
		if n, ok := NormalizeUnit(u); ok {
			want[n] = true
		}
	}

	kept := make([]string, 0, len(m.Units))
	for _, u := range m.Units {
		if want[u] {
			kept = append(kept, u)
		}
	}

	out := &Matrix{
		Fractions: append([]string(nil), m.Fractions...),
		Units:     kept,
		Stats:     m.Stats,
		cells:     make(map[string]map[string]Cell, len(m.cells)),
	}
	for fraction, byUnit := range m.cells {
		sub := make(map[string]Cell, len(kept))
		for _, u := range kept {
			if c, ok := byUnit[u]; ok {
				sub[u] = c
			}
		}
		out.cells[fraction] = sub
	}
	return out
}
