// =============================================================================
// Fraksjonsoversikt - Validation
// =============================================================================
//
// This module holds the only two validations the report performs:
//   - Required column checks on the input table schema
//   - Quantity parsing ("is this cell a number?")
//
// Everything else is accepted as-is. A quantity that fails to parse is not
// an error: callers exclude it from sums and keep going.
//
// =============================================================================

package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEMA VALIDATION
// =============================================================================

// MissingColumns returns the required columns that are not in headers,
// in the order they were required. Matching is exact and case-sensitive.
func MissingColumns(headers []string, required []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// =============================================================================
// QUANTITY VALIDATION
// =============================================================================

// maxExponent bounds the decimal exponent of a quantity to the float64 range.
// Larger exponents make every later rescale allocate that many digits.
const maxExponent = 308

// ParseQuantity parses a quantity cell.
//
// ACCEPTED FORMATS:
//   - Plain numbers: "15", "-2", "1.5", "1e3"
//   - Decimal comma when the value has no dot: "12,5"
//
// RETURNS:
//   - The parsed value and true, or zero and false when the cell is empty,
//     not a number ("NaN", "abc", "1.2.3") or outside the float64 range
//     ("1e400", "1e-400").
func ParseQuantity(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	// Exported spreadsheets from Norwegian locales use a decimal comma.
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}
	if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return d, true
}
