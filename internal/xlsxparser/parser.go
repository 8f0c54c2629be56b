// =============================================================================
// Fraksjonsoversikt - XLSX Parser
// =============================================================================
//
// This module reads the first worksheet of an uploaded workbook into a
// types.Table. The first row is the header; every following row is data.
//
// Cells are read as raw values, so a quantity formatted as "12,50 kg" in the
// spreadsheet is still read as "12.5".
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"

	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/xuri/excelize/v2"
)

// zipMagic starts every OOXML workbook.
var zipMagic = []byte("PK\x03\x04")

// Reader is a types.TableReader for .xlsx workbooks.
type Reader struct{}

// New creates a Reader.
func New() *Reader {
	return &Reader{}
}

// Read decodes the first worksheet of data.
//
// PARAMETERS:
//   - name: The file name, stored as the table source.
//   - data: The raw workbook content.
//
// RETURNS:
//   - The decoded table. A sheet without rows yields a table with no
//     headers, which fails the required-column check downstream.
//   - An error if data is not a readable workbook.
func (r *Reader) Read(name string, data []byte) (*types.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return types.NewTable(name, nil, nil), nil
	}

	return types.NewTable(name, rows[0], rows[1:]), nil
}

// IsWorkbook reports whether data looks like an OOXML workbook.
func IsWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}
