package domain

import "context"

// FoodItemRepository defines the contract for food item storage. Listing
// methods return items in insertion order.
type FoodItemRepository interface {
	// Save assigns an id to item and persists it
	Save(ctx context.Context, item *FoodItem) error
	// SaveAll assigns ids and persists every item in one all-or-nothing commit
	SaveAll(ctx context.Context, items []*FoodItem) error
	Remove(ctx context.Context, item *FoodItem) error
	FindByID(ctx context.Context, id string) (*FoodItem, error)
	FindByCategory(ctx context.Context, category Category) ([]*FoodItem, error)
	FindByCategoryAndCriteria(ctx context.Context, category Category, criteria SearchCriteria) ([]*FoodItem, error)
}
