// =============================================================================
// Fraksjonsoversikt - Fraction Derivation
// =============================================================================

package report

// KranbilDesignation marks rows whose real category lives in the material
// card text instead of the designation.
const KranbilDesignation = "Kranbil Isekk - Avfallstype"

// DeriveFraction returns the grouping label for a row. The comparison is
// exact; "kranbil isekk - avfallstype" is its own fraction.
func DeriveFraction(designation, materialCardText string) string {
	if designation == KranbilDesignation {
		return materialCardText
	}
	return designation
}
