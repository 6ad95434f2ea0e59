package domain

// RawFoodItem is one record of a batch exactly as the caller sent it
type RawFoodItem map[string]any

// ItemError describes a rejected batch record
type ItemError struct {
	Index   int
	Item    RawFoodItem
	Field   string
	Message string
}

// BatchResult is the outcome of processing a batch. Processed always holds a
// (possibly empty) slice for every category.
type BatchResult struct {
	Processed  map[Category][]*FoodItem
	Errors     []ItemError
	Successful bool
}

// NewBatchResult returns an empty result with every category present
func NewBatchResult() *BatchResult {
	processed := make(map[Category][]*FoodItem, len(Categories()))
	for _, c := range Categories() {
		processed[c] = []*FoodItem{}
	}
	return &BatchResult{
		Processed: processed,
		Errors:    []ItemError{},
	}
}

// Items returns the processed items in category display order
func (r *BatchResult) Items() []*FoodItem {
	var items []*FoodItem
	for _, c := range Categories() {
		items = append(items, r.Processed[c]...)
	}
	return items
}
