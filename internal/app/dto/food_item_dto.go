package dto

import (
	"github.com/mrops-br/food-catalog-api/internal/domain"
)

// FoodItemResponse is the wire form of a food item. Quantity is in grams
// unless an output unit was requested.
type FoodItemResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Quantity float64 `json:"quantity"`
}

// GroupedResponse maps a category key ("fruits", "vegetables" or a single
// category name) to its items
type GroupedResponse map[string][]*FoodItemResponse

// ItemErrorResponse describes a rejected batch record
type ItemErrorResponse struct {
	Index int                `json:"index"`
	Item  domain.RawFoodItem `json:"item"`
	Error string             `json:"error"`
}

// BatchResponse is the wire form of a processed batch
type BatchResponse struct {
	Processed  GroupedResponse     `json:"processed"`
	Errors     []ItemErrorResponse `json:"errors"`
	Successful bool                `json:"successful"`
}

// ToFoodItemResponse converts a domain FoodItem, expressing its quantity in unit
func ToFoodItemResponse(item *domain.FoodItem, unit string) *FoodItemResponse {
	return &FoodItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Type:     item.Category.String(),
		Quantity: item.QuantityIn(unit),
	}
}

// ToFoodItemResponseList converts a list of domain FoodItems. The result is never nil.
func ToFoodItemResponseList(items []*domain.FoodItem, unit string) []*FoodItemResponse {
	responses := make([]*FoodItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToFoodItemResponse(item, unit)
	}
	return responses
}

// ToGroupedResponse keys every category by its plural name
func ToGroupedResponse(groups map[domain.Category][]*domain.FoodItem, unit string) GroupedResponse {
	response := make(GroupedResponse, len(domain.Categories()))
	for _, category := range domain.Categories() {
		response[category.Plural()] = ToFoodItemResponseList(groups[category], unit)
	}
	return response
}

// ToCategoryResponse keys a single category by its own name
func ToCategoryResponse(category domain.Category, items []*domain.FoodItem, unit string) GroupedResponse {
	return GroupedResponse{
		category.String(): ToFoodItemResponseList(items, unit),
	}
}

// ToBatchResponse converts a batch result
func ToBatchResponse(result *domain.BatchResult) *BatchResponse {
	errs := make([]ItemErrorResponse, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = ItemErrorResponse{
			Index: e.Index,
			Item:  e.Item,
			Error: e.Message,
		}
	}
	return &BatchResponse{
		Processed:  ToGroupedResponse(result.Processed, domain.UnitGrams),
		Errors:     errs,
		Successful: result.Successful,
	}
}
