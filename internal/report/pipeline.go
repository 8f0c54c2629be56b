// =============================================================================
// Fraksjonsoversikt - Report Pipeline
// =============================================================================
//
// PIPELINE:
//   1. Check the required columns
//   2. Aggregate per fraction and unit
//   3. Apply the unit filter
//   4. Sort and append the SUM row
//   5. Render display, export and flat text
//
// =============================================================================

// Package report turns a waste-tracking export into a fraction × unit
// summary: derive a fraction per line, sum quantities per unit, order the
// fractions, append a SUM row and render the result.
package report

import (
	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/TeoCir/IsekkKran/internal/validation"
)

// Input column names.
const (
	ColumnDesignation      = "Betegnelse"
	ColumnMaterialCardText = "Materialkorttekst"
	ColumnTargetQuantity   = "Målkvantum"
	ColumnUnitCode         = "KE.1"
)

// RequiredColumns lists the columns every input table must have.
var RequiredColumns = []string{
	ColumnDesignation,
	ColumnMaterialCardText,
	ColumnTargetQuantity,
	ColumnUnitCode,
}

// Options configures one report build.
type Options struct {
	// Units restricts the report to these units. Empty means all units.
	Units []string

	// Display controls the on-screen number format. The zero value keeps
	// full precision.
	Display FormatOptions

	// FlatText enables the delimited-text rendering when non-nil.
	FlatText *FlatTextOptions
}

// Report is the result of one pipeline run.
type Report struct {
	Table    *Table
	Display  DisplayTable
	Export   types.Sheet
	FlatText string
	Stats    Stats
}

// BuildReport validates the table and runs the whole pipeline.
//
// PARAMETERS:
//   - table: The decoded export. Its headers must contain RequiredColumns.
//   - opt: Unit filter, display format and optional flat text settings.
//
// RETURNS:
//   - The complete report, or *SchemaError / *NoUsableUnitsError. A
//     partial report is never returned.
func BuildReport(table *types.Table, opt Options) (*Report, error) {
	if missing := validation.MissingColumns(table.Headers, RequiredColumns); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	m := Aggregate(SourceRows(table))
	if len(m.Units) == 0 {
		return nil, &NoUsableUnitsError{Requested: opt.Units}
	}
	if len(opt.Units) > 0 {
		found := m.Units
		m = m.WithUnits(opt.Units)
		if len(m.Units) == 0 {
			return nil, &NoUsableUnitsError{Requested: opt.Units, Found: found}
		}
	}

	sorted := SortRows(m)
	rep := &Report{
		Table:   sorted,
		Display: Display(sorted, opt.Display),
		Export:  Export(sorted),
		Stats:   m.Stats,
	}

	if opt.FlatText != nil {
		rep.FlatText = RenderFlatText(sorted, *opt.FlatText)
	}

	return rep, nil
}

// SourceRows extracts the report fields from every table row.
func SourceRows(table *types.Table) []SourceRow {
	rows := make([]SourceRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, SourceRow{
			Designation:      r[ColumnDesignation],
			MaterialCardText: r[ColumnMaterialCardText],
			TargetQuantity:   r[ColumnTargetQuantity],
			UnitCode:         r[ColumnUnitCode],
		})
	}
	return rows
}
