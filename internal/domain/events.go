package domain

import "time"

// BatchIngested is emitted once the validated items of a batch are committed
type BatchIngested struct {
	BatchID    string           `json:"batch_id"`
	ItemIDs    []string         `json:"item_ids"`
	Counts     map[Category]int `json:"counts"`
	Rejected   int              `json:"rejected"`
	OccurredAt time.Time        `json:"occurred_at"`
}
