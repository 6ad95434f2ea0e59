package domain

// Recognized quantity units. Anything else is treated as grams.
const (
	UnitGrams          = "grams"
	UnitGramsShort     = "g"
	UnitKilograms      = "kilograms"
	UnitKilogramsShort = "kg"
)

const gramsPerKilogram = 1000

// ToGrams converts value expressed in unit into grams. Unknown units are
// returned unchanged.
func ToGrams(value float64, unit string) float64 {
	if isKilograms(unit) {
		return value * gramsPerKilogram
	}
	return value
}

// FromGrams converts a stored gram amount into unit for display
func FromGrams(grams float64, unit string) float64 {
	if isKilograms(unit) {
		return grams / gramsPerKilogram
	}
	return grams
}

// IsKnownUnit reports whether unit is one of the recognized spellings. An
// empty unit counts as grams.
func IsKnownUnit(unit string) bool {
	switch unit {
	case "", UnitGrams, UnitGramsShort, UnitKilograms, UnitKilogramsShort:
		return true
	default:
		return false
	}
}

func isKilograms(unit string) bool {
	return unit == UnitKilograms || unit == UnitKilogramsShort
}
