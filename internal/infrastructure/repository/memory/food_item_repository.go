package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FoodItemRepository is an in-memory implementation of domain.FoodItemRepository.
// Items are kept in insertion order; callers always receive copies.
type FoodItemRepository struct {
	mu     sync.RWMutex
	items  []*domain.FoodItem
	byID   map[string]*domain.FoodItem
	tracer trace.Tracer
	logger *slog.Logger
}

// NewFoodItemRepository creates a new in-memory food item repository
func NewFoodItemRepository(tracer trace.Tracer, logger *slog.Logger) *FoodItemRepository {
	return &FoodItemRepository{
		byID:   make(map[string]*domain.FoodItem),
		tracer: tracer,
		logger: logger,
	}
}

// Save stores a single item
func (r *FoodItemRepository) Save(ctx context.Context, item *domain.FoodItem) error {
	return r.SaveAll(ctx, []*domain.FoodItem{item})
}

// SaveAll validates every item before storing any of them
func (r *FoodItemRepository) SaveAll(ctx context.Context, items []*domain.FoodItem) error {
	ctx, span := r.tracer.Start(ctx, "FoodItemRepository.SaveAll")
	defer span.End()

	span.SetAttributes(attribute.Int("food_item.count", len(items)))

	for _, item := range items {
		if err := item.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid food item")
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, item := range items {
		item.ID = uuid.NewString()
		item.CreatedAt = now

		stored := *item
		r.items = append(r.items, &stored)
		r.byID[stored.ID] = &stored
	}

	r.logger.InfoContext(ctx, "Food items stored in repository",
		slog.Int("count", len(items)),
	)

	span.SetStatus(codes.Ok, "Food items stored")
	return nil
}

// Remove deletes an item permanently
func (r *FoodItemRepository) Remove(ctx context.Context, item *domain.FoodItem) error {
	ctx, span := r.tracer.Start(ctx, "FoodItemRepository.Remove")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", item.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[item.ID]; !exists {
		span.RecordError(domain.ErrFoodItemNotFound)
		span.SetStatus(codes.Error, "Food item not found")
		return domain.ErrFoodItemNotFound
	}

	delete(r.byID, item.ID)
	kept := r.items[:0]
	for _, existing := range r.items {
		if existing.ID != item.ID {
			kept = append(kept, existing)
		}
	}
	r.items = kept

	r.logger.InfoContext(ctx, "Food item removed from repository",
		slog.String("food_item_id", item.ID),
	)

	span.SetStatus(codes.Ok, "Food item removed")
	return nil
}

// FindByID retrieves an item by id
func (r *FoodItemRepository) FindByID(ctx context.Context, id string) (*domain.FoodItem, error) {
	ctx, span := r.tracer.Start(ctx, "FoodItemRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.byID[id]
	if !exists {
		span.RecordError(domain.ErrFoodItemNotFound)
		span.SetStatus(codes.Error, "Food item not found")
		r.logger.WarnContext(ctx, "Food item not found",
			slog.String("food_item_id", id),
		)
		return nil, domain.ErrFoodItemNotFound
	}

	span.SetStatus(codes.Ok, "Food item found")
	found := *item
	return &found, nil
}

// FindByCategory lists every item of a category
func (r *FoodItemRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.FoodItem, error) {
	return r.FindByCategoryAndCriteria(ctx, category, domain.SearchCriteria{})
}

// FindByCategoryAndCriteria lists the items of a category matching criteria
func (r *FoodItemRepository) FindByCategoryAndCriteria(ctx context.Context, category domain.Category, criteria domain.SearchCriteria) ([]*domain.FoodItem, error) {
	ctx, span := r.tracer.Start(ctx, "FoodItemRepository.FindByCategoryAndCriteria")
	defer span.End()

	span.SetAttributes(
		attribute.String("food_item.category", category.String()),
		attribute.String("search.name", criteria.Name),
	)

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.FoodItem, 0)
	for _, item := range r.items {
		if item.Category != category || !criteria.Matches(item) {
			continue
		}
		found := *item
		items = append(items, &found)
	}

	span.SetAttributes(attribute.Int("food_item.count", len(items)))

	r.logger.DebugContext(ctx, "Food items retrieved from repository",
		slog.String("category", category.String()),
		slog.Int("count", len(items)),
	)

	span.SetStatus(codes.Ok, "Food items retrieved")
	return items, nil
}
