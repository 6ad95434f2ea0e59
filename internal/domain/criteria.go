package domain

import "strings"

// Recognized search criteria keys. Other keys are ignored.
const (
	CriterionName     = "name"
	CriterionQuantity = "quantity"
)

// SearchCriteria is the structured form of free-text search parameters
type SearchCriteria struct {
	// Name is matched as a case-insensitive substring. Empty matches everything.
	Name     string
	Quantity *QuantityPredicate
}

// ParseSearchCriteria translates query parameters into SearchCriteria
func ParseSearchCriteria(params map[string]string) (SearchCriteria, error) {
	var criteria SearchCriteria
	for key, value := range params {
		switch key {
		case CriterionName:
			criteria.Name = value
		case CriterionQuantity:
			predicate, err := ParseQuantityFilter(value)
			if err != nil {
				return SearchCriteria{}, err
			}
			criteria.Quantity = &predicate
		}
	}
	return criteria, nil
}

// Matches applies the criteria to a single item in memory
func (c SearchCriteria) Matches(item *FoodItem) bool {
	if c.Name != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(c.Name)) {
		return false
	}
	if c.Quantity != nil && !c.Quantity.Matches(item.QuantityGrams) {
		return false
	}
	return true
}
