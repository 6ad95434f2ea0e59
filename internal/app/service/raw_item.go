package service

import (
	"errors"
	"fmt"

	"github.com/mrops-br/food-catalog-api/internal/domain"
)

// buildFoodItem turns one raw record into a validated FoodItem. forced, when
// set, overrides the record's own type. Every failure is a *domain.ValidationError.
func buildFoodItem(raw domain.RawFoodItem, forced *domain.Category) (*domain.FoodItem, error) {
	quantity, ok := raw[domain.FieldQuantity]
	if !ok || quantity == nil {
		return nil, requiredField(domain.FieldQuantity)
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	missing := make(map[string]bool)

	name, present, err := stringField(raw, domain.FieldName)
	if err != nil {
		return nil, err
	}
	missing[domain.FieldName] = !present

	var category string
	if forced != nil {
		category = forced.String()
	} else {
		category, present, err = stringField(raw, domain.FieldType)
		if err != nil {
			return nil, err
		}
		missing[domain.FieldType] = !present
	}

	unit, _, err := stringField(raw, domain.FieldUnit)
	if err != nil {
		return nil, err
	}
	if unit == "" {
		unit = domain.UnitGrams
	}

	item, err := domain.NewFoodItem(name, category, quantity, unit)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && missing[validationErr.Field] {
			return nil, requiredField(validationErr.Field)
		}
		return nil, err
	}
	return item, nil
}

// stringField reads an optional string field. A present non-string value is a
// validation error; null counts as absent.
func stringField(raw domain.RawFoodItem, field string) (string, bool, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", true, &domain.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", field),
		}
	}
	return s, true, nil
}

func requiredField(field string) *domain.ValidationError {
	return &domain.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// lenientUnit reports a unit string that is not recognized and will be read as grams
func lenientUnit(raw domain.RawFoodItem) (string, bool) {
	unit, ok := raw[domain.FieldUnit].(string)
	if !ok || domain.IsKnownUnit(unit) {
		return "", false
	}
	return unit, true
}
