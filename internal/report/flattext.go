// =============================================================================
// Fraksjonsoversikt - Flat Text
// =============================================================================
//
// Copy-paste rendering of the sorted table. Absent cells follow their own
// row-level rule here, separate from the display formatting.
//
// =============================================================================

package report

import (
	"fmt"
	"strings"
)

// FlatTextOptions controls the copy-paste rendering.
type FlatTextOptions struct {
	// Delimiter separates fields: '\t', ';', ',' or '|'.
	Delimiter rune

	// IncludeSum appends the SUM row.
	IncludeSum bool

	// Decimals is the number of places non-whole values are rounded to.
	Decimals int
}

// ParseDelimiter maps a delimiter name or character to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "\\t", "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case ",", "comma":
		return ',', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter %q (use tab, semicolon, comma or pipe)", s)
	}
}

// FlatTextMIME returns the content type of a downloaded flat-text file.
func FlatTextMIME(delim rune) string {
	if delim == ',' || delim == ';' {
		return "text/csv"
	}
	return "text/plain"
}

// FlatTextExtension returns the file extension matching FlatTextMIME.
func FlatTextExtension(delim rune) string {
	if delim == ',' || delim == ';' {
		return ".csv"
	}
	return ".txt"
}

// RenderFlatText renders the table as delimited text.
//
// Absent cells follow a row-level rule: a row with no present cell is left
// entirely blank, otherwise its absent cells are written as "0".
//
// A field is quoted only when it contains the delimiter, a double quote or
// a line break. Leading and trailing spaces are written as they are.
func RenderFlatText(t *Table, opt FlatTextOptions) string {
	delim := opt.Delimiter
	if delim == 0 {
		delim = '\t'
	}
	format := FormatOptions{Fixed: true, Decimals: opt.Decimals}

	var b strings.Builder
	writeFlatLine(&b, append([]string{FractionHeader}, t.Units...), delim)

	rows := t.FractionRows()
	if opt.IncludeSum {
		rows = t.Rows
	}
	for _, r := range rows {
		writeFlatLine(&b, flatLine(r, format), delim)
	}
	return b.String()
}

func writeFlatLine(b *strings.Builder, fields []string, delim rune) {
	for i, f := range fields {
		if i > 0 {
			b.WriteRune(delim)
		}
		b.WriteString(quoteFlatField(f, delim))
	}
	b.WriteByte('\n')
}

func quoteFlatField(f string, delim rune) string {
	if !strings.ContainsRune(f, delim) && !strings.ContainsAny(f, "\"\r\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func flatLine(r Row, format FormatOptions) []string {
	anyPresent := false
	for _, c := range r.Cells {
		if c.Present {
			anyPresent = true
			break
		}
	}

	line := make([]string, 0, len(r.Cells)+1)
	line = append(line, r.Fraction)
	for _, c := range r.Cells {
		switch {
		case c.Present:
			line = append(line, formatValue(c.Value, format))
		case anyPresent:
			line = append(line, "0")
		default:
			line = append(line, "")
		}
	}
	return line
}
