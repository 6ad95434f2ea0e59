package domain

// Category classifies a food item. The set is closed: every dispatch on a
// Category switches over Fruit and Vegetable explicitly.
type Category string

const (
	Fruit     Category = "fruit"
	Vegetable Category = "vegetable"
)

// Categories returns every category in display order
func Categories() []Category {
	return []Category{Fruit, Vegetable}
}

// ParseCategory maps a wire value onto a Category
func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case Fruit:
		return Fruit, true
	case Vegetable:
		return Vegetable, true
	default:
		return "", false
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case Fruit, Vegetable:
		return true
	default:
		return false
	}
}

// Plural is the key used when results of several categories are grouped together
func (c Category) Plural() string {
	switch c {
	case Fruit:
		return "fruits"
	case Vegetable:
		return "vegetables"
	default:
		return string(c)
	}
}

func (c Category) String() string {
	return string(c)
}
