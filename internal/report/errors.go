// =============================================================================
// Fraksjonsoversikt - Report Errors
// =============================================================================
//
// The three conditions a caller can recover from by fixing the input:
//   - SchemaError: required columns missing
//   - UnreadableFileError: the upload could not be decoded
//   - NoUsableUnitsError: no unit left to report
//
// =============================================================================

package report

import (
	"fmt"
	"strings"
)

// SchemaError is returned when the input table lacks required columns.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// UnreadableFileError wraps a decoder failure for an uploaded file.
type UnreadableFileError struct {
	Name string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("could not read %s: %v", e.Name, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// NoUsableUnitsError is a warning-level condition: after unit normalization
// and filtering there is nothing left to report.
type NoUsableUnitsError struct {
	// Requested is the unit filter that was applied, if any.
	Requested []string

	// Found lists the units present in the data before filtering.
	Found []string
}

func (e *NoUsableUnitsError) Error() string {
	if len(e.Found) == 0 {
		return "no rows with a usable unit"
	}
	return fmt.Sprintf("unit filter [%s] matches none of the units in the data [%s]",
		strings.Join(e.Requested, ", "), strings.Join(e.Found, ", "))
}
