package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FoodItem is a catalog entry. Quantity is always held in grams.
type FoodItem struct {
	ID            string
	Name          string
	Category      Category
	QuantityGrams float64
	CreatedAt     time.Time
}

// NewFoodItem validates raw input and builds a food item with its quantity
// normalized to grams. quantity may be any Go number, a json.Number or a
// numeric string. The quantity is checked first, before the category or the
// unit are looked at.
func NewFoodItem(name, category string, quantity any, unit string) (*FoodItem, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	amount, _ := parseQuantity(quantity)
	grams := ToGrams(amount, unit)
	if math.IsInf(grams, 0) {
		return nil, newValidationError(FieldQuantity, "quantity out of range")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError(FieldName, "name blank")
	}

	parsed, ok := ParseCategory(category)
	if !ok {
		return nil, newValidationError(FieldType, "invalid category")
	}

	return &FoodItem{
		Name:          name,
		Category:      parsed,
		QuantityGrams: grams,
	}, nil
}

// Validate re-checks the entity invariants
func (f *FoodItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return newValidationError(FieldName, "name blank")
	}
	if !f.Category.Valid() {
		return newValidationError(FieldType, "invalid category")
	}
	if math.IsNaN(f.QuantityGrams) || f.QuantityGrams <= 0 {
		return newValidationError(FieldQuantity, "quantity must be positive")
	}
	if math.IsInf(f.QuantityGrams, 0) {
		return newValidationError(FieldQuantity, "quantity out of range")
	}
	return nil
}

// ValidateQuantity reports whether quantity is a finite positive number. It
// does not depend on the unit.
func ValidateQuantity(quantity any) error {
	amount, ok := parseQuantity(quantity)
	if !ok || amount <= 0 {
		return newValidationError(FieldQuantity, "quantity must be positive")
	}
	return nil
}

// QuantityIn returns the stored quantity expressed in unit
func (f *FoodItem) QuantityIn(unit string) float64 {
	return FromGrams(f.QuantityGrams, unit)
}

func parseQuantity(value any) (float64, bool) {
	var amount float64
	switch v := value.(type) {
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	case int:
		amount = float64(v)
	case int32:
		amount = float64(v)
	case int64:
		amount = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		amount = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		amount = f
	default:
		return 0, false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}
