package units

import (
	"math"
	"testing"
)

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name     string
		mm       float64
		unit     string
		expected float64
	}{
		{"2 mm to mm", 2, MM, 2},
		{"2 mm to um", 2, UM, 2000},
		{"2 mm to cm", 2, CM, 0.2},
		{"25.4 mm to in", 25.4, IN, 1},
		{"empty unit is mm", 3.5, "", 3.5},
		{"unknown unit is mm", 3.5, "furlong", 3.5},
		{"infinity survives", math.Inf(1), IN, math.Inf(1)},
		{"plot clamp is 1000 m", 1e6, CM, 1e5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.mm, tt.unit)
			if result != tt.expected && math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.mm, tt.unit, result, tt.expected)
			}
		})
	}

	if !math.IsNaN(ConvertDistance(math.NaN(), UM)) {
		t.Error("NaN should stay NaN")
	}
}

func TestIsValid(t *testing.T) {
	for _, u := range append(ValidUnits, "") {
		if !IsValid(u) {
			t.Errorf("IsValid(%q) = false", u)
		}
	}
	for _, u := range []string{"m", "MM", "inch"} {
		if IsValid(u) {
			t.Errorf("IsValid(%q) = true", u)
		}
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "mm, um, cm, in" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
