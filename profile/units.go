package profile

import (
	"fmt"
	"math"
)

// UnitSystem selects how body measurements are displayed.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

const (
	poundsPerKilogram  = 2.20462262185
	centimetresPerInch = 2.54
)

// ParseUnitSystem accepts "metric" or "imperial".
func ParseUnitSystem(value string) (UnitSystem, bool) {
	switch UnitSystem(value) {
	case Metric, Imperial:
		return UnitSystem(value), true
	default:
		return "", false
	}
}

func (u UnitSystem) Label() string {
	return unitsField.Label(string(u))
}

func KilogramsToPounds(kg float64) float64 {
	return kg * poundsPerKilogram
}

func PoundsToKilograms(lb float64) float64 {
	return lb / poundsPerKilogram
}

func CentimetresToInches(cm float64) float64 {
	return cm / centimetresPerInch
}

func InchesToCentimetres(in float64) float64 {
	return in * centimetresPerInch
}

// FormatWeight renders a weight stored in kilograms.
func (u UnitSystem) FormatWeight(kg float64) string {
	if u == Imperial {
		return fmt.Sprintf("%s lbs", trim(KilogramsToPounds(kg)))
	}
	return fmt.Sprintf("%s kg", trim(kg))
}

// FormatLength renders a length stored in centimetres.
func (u UnitSystem) FormatLength(cm float64) string {
	if u == Imperial {
		return fmt.Sprintf("%s in", trim(CentimetresToInches(cm)))
	}
	return fmt.Sprintf("%s cm", trim(cm))
}

func trim(v float64) string {
	rounded := math.Round(v*10) / 10
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0f", rounded)
	}
	return fmt.Sprintf("%.1f", rounded)
}
