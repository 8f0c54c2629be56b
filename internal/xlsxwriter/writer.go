// =============================================================================
// Fraksjonsoversikt - XLSX Writer
// =============================================================================
//
// This module serializes a types.Sheet into an .xlsx workbook with a single
// worksheet. Numbers stay numeric so the spreadsheet can sum and chart them;
// nil cells are not written at all.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/xuri/excelize/v2"
)

// MIME is the content type of a downloaded workbook.
const MIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// Writer is a types.TableWriter producing .xlsx bytes.
type Writer struct {
	// FirstColumnWidth widens column A, which holds the fraction names.
	// Zero keeps the spreadsheet default.
	FirstColumnWidth float64
}

// New creates a Writer with a readable first column.
func New() *Writer {
	return &Writer{FirstColumnWidth: 40}
}

// Write renders sheet as a workbook.
//
// RETURNS:
//   - The workbook bytes.
//   - An error if a cell holds an unsupported type or excelize fails.
func (w *Writer) Write(sheet types.Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = defaultSheet
	}
	if name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
		}
	}

	if err := writeRow(f, name, 1, toAny(sheet.Header)); err != nil {
		return nil, err
	}
	if len(sheet.Header) > 0 {
		if err := styleHeader(f, name, len(sheet.Header)); err != nil {
			return nil, err
		}
	}

	for i, row := range sheet.Rows {
		if err := writeRow(f, name, i+2, row); err != nil {
			return nil, err
		}
	}

	if w.FirstColumnWidth > 0 {
		if err := f.SetColWidth(name, "A", "A", w.FirstColumnWidth); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		switch v.(type) {
		case string, int64, float64:
		default:
			return fmt.Errorf("unsupported cell type %T in row %d", v, rowNum)
		}

		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("invalid cell position: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", cell, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, width int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return fmt.Errorf("invalid header width: %w", err)
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
