// =============================================================================
// Fraksjonsoversikt - Unit Normalization
// =============================================================================

package report

import (
	"sort"
	"strings"
)

// Unit codes the sorter gives priority to.
const (
	UnitKG = "KG"
	UnitST = "ST"
)

// GarbageUnits holds the normalized unit labels that never count as a unit.
// It is the single list used by both normalization and column building.
var GarbageUnits = map[string]bool{
	"":      true,
	"NAN":   true,
	"NA":    true,
	"NONE":  true,
	"NULL":  true,
	"TOTAL": true,
	"SUM":   true,
}

// NormalizeUnit trims and uppercases a raw unit code. It returns false when
// the code is missing or one of GarbageUnits.
func NormalizeUnit(raw string) (string, bool) {
	u := strings.ToUpper(strings.TrimSpace(raw))
	if GarbageUnits[u] {
		return "", false
	}
	return u, true
}

// UnitOrder returns the column order for a set of units: KG first when
// present, then the rest alphabetically. Garbage labels are dropped.
func UnitOrder(units []string) []string {
	seen := make(map[string]bool, len(units))
	rest := make([]string, 0, len(units))
	hasKG := false

	for _, u := range units {
		u = strings.ToUpper(strings.TrimSpace(u))
		if GarbageUnits[u] || seen[u] {
			continue
		}
		seen[u] = true
		if u == UnitKG {
			hasKG = true
			continue
		}
		rest = append(rest, u)
	}
	sort.Strings(rest)

	if hasKG {
		return append([]string{UnitKG}, rest...)
	}
	return rest
}
