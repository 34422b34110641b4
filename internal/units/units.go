// Package units converts probe distances for display. The device reports
// distance in millimetres and velocity in mm/s.
package units

import "strings"

const (
	MM = "mm"
	UM = "um"
	CM = "cm"
	IN = "in"
)

// ValidUnits lists the accepted display units.
var ValidUnits = []string{MM, UM, CM, IN}

// IsValid reports whether unit is a display unit. The empty string means
// millimetres.
func IsValid(unit string) bool {
	if unit == "" {
		return true
	}
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns the units for error messages.
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertDistance converts millimetres to unit. Velocities in mm/s convert
// the same way. Unknown units are left in millimetres.
func ConvertDistance(mm float64, unit string) float64 {
	switch unit {
	case UM:
		return mm * 1000
	case CM:
		return mm / 10
	case IN:
		return mm / 25.4
	default:
		return mm
	}
}
