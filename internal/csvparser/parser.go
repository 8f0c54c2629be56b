// =============================================================================
// Fraksjonsoversikt - CSV Parser Module
// =============================================================================
//
// This module decodes delimited text exports into a types.Table. It handles:
//   - Different delimiters (comma, semicolon, tab, pipe), sniffed from the
//     header line unless configured
//   - Different encodings (UTF-8 with or without BOM, UTF-16 with BOM,
//     Windows-1252 and other single-byte code pages)
//   - Quoted fields with embedded delimiters and line breaks
//   - Duplicate and empty headers ("KE", "KE" -> "KE", "KE.1")
//
// Cell values are kept verbatim. Trimming and number parsing happen later
// in the report pipeline.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/TeoCir/IsekkKran/internal/config"
	"github.com/TeoCir/IsekkKran/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmpty is returned for input without a header line.
var ErrEmpty = errors.New("file is empty")

// =============================================================================
// READER
// =============================================================================

// Reader is a types.TableReader for delimited text.
type Reader struct {
	settings config.CSVSettings
}

// New creates a Reader with the given settings.
func New(settings config.CSVSettings) *Reader {
	return &Reader{settings: settings}
}

// Read decodes data into a Table.
//
// PARAMETERS:
//   - name: The file name, stored as the table source.
//   - data: The raw file content.
//
// RETURNS:
//   - The decoded table.
//   - An error if the encoding is unknown or the text is not valid CSV.
//
// PARSING PROCESS:
//  1. Convert the input to UTF-8 (dropping any byte order mark)
//  2. Pick the delimiter (configured, or sniffed from the header line)
//  3. Read all records
//  4. Mangle the header and map each record onto it
func (r *Reader) Read(name string, data []byte) (*types.Table, error) {
	text, err := decode(data, r.settings.Encoding)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, ErrEmpty
	}

	csvReader := csv.NewReader(bytes.NewReader(text))
	configureReader(csvReader, r.settings.Delimiter, text)

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return types.NewTable(name, header, records), nil
}

// configureReader sets the delimiter and leniency options.
func configureReader(reader *csv.Reader, delimiter string, text []byte) {
	switch strings.ToLower(delimiter) {
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "|", "pipe":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	case ",", "comma":
		reader.Comma = ','
	default:
		reader.Comma = SniffDelimiter(text)
	}

	// Exports from some tools pad short rows; keep whatever is there.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// SniffDelimiter guesses the delimiter from the first line by counting
// tabs, semicolons and commas outside quotes. Comma wins when none occur.
func SniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, c := range string(line) {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == '\t' || c == ';' || c == ',':
			counts[c]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range []rune{'\t', ';', ','} {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// =============================================================================
// ENCODING
// =============================================================================

// decode converts data to UTF-8.
//
// "auto" (or empty) keeps valid UTF-8 and falls back to Windows-1252, the
// code page spreadsheet tools use for Norwegian text. A byte order mark
// always wins over the configured encoding.
func decode(data []byte, name string) ([]byte, error) {
	enc, err := lookupEncoding(name, data)
	if err != nil {
		return nil, err
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s text: %w", name, err)
	}
	return out, nil
}

func lookupEncoding(name string, data []byte) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if utf8.Valid(data) {
			return encoding.Nop, nil
		}
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return encoding.Nop, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}
