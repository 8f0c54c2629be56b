// =============================================================================
// Fraksjonsoversikt - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (produce a Table)
//   - report (consumes a Table, produces a Sheet)
//   - xlsxwriter (serializes a Sheet)
//   - converter / server (wire readers and writers together)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// INPUT TABLE
// =============================================================================

// Table is a decoded input file: named columns and one string map per row.
type Table struct {
	// Headers contains the column headers in file order.
	// Duplicate headers are already disambiguated ("KE", "KE.1", ...).
	Headers []string

	// Rows contains the data rows as maps of header -> raw cell text.
	// A cell that is missing in the source is stored as "".
	Rows []map[string]string

	// Source is a human readable name of the input (usually the file name).
	Source string
}

// NewTable builds a Table from a header record and data records.
//
// PARAMETERS:
//   - source: The input name, kept for error messages.
//   - header: The raw header record.
//   - records: The data records. Records with only blank cells are skipped.
//
// HEADER RULES:
//   - Empty headers become "Unnamed: <index>" (0-based).
//   - Repeated headers get a numeric suffix: "KE", "KE" -> "KE", "KE.1".
//
// Cell values are kept verbatim. Extra cells beyond the header are ignored
// and missing cells are stored as "".
func NewTable(source string, header []string, records [][]string) *Table {
	headers := MangleHeaders(header)
	t := &Table{
		Headers: headers,
		Rows:    make([]map[string]string, 0, len(records)),
		Source:  source,
	}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// MangleHeaders makes every header unique and non-empty.
func MangleHeaders(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for taken[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// TableReader decodes an uploaded byte blob into a Table.
type TableReader interface {
	Read(name string, data []byte) (*Table, error)
}

// =============================================================================
// OUTPUT SHEET
// =============================================================================

// Sheet is a single worksheet ready to be serialized.
type Sheet struct {
	// Name is the worksheet name.
	Name string

	// Header is written as the first row.
	Header []string

	// Rows contains the cell values of each data row.
	// Supported values: nil (left empty), string, int64 and float64.
	Rows [][]any
}

// TableWriter serializes a Sheet to a downloadable spreadsheet.
type TableWriter interface {
	Write(sheet Sheet) ([]byte, error)
}
