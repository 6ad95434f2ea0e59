package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FoodItemService handles single-item use cases
type FoodItemService struct {
	repo                   domain.FoodItemRepository
	tracer                 trace.Tracer
	logger                 *slog.Logger
	foodItemCreatedCounter metric.Int64Counter
	foodItemOperations     metric.Int64Counter
}

// NewFoodItemService creates a new food item service
func NewFoodItemService(
	repo domain.FoodItemRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *FoodItemService {
	foodItemCreatedCounter, _ := meter.Int64Counter(
		"fooditems.created.total",
		metric.WithDescription("Total number of food items created one at a time"),
	)

	foodItemOperations, _ := meter.Int64Counter(
		"fooditems.operations",
		metric.WithDescription("Total number of food item operations"),
	)

	return &FoodItemService{
		repo:                   repo,
		tracer:                 tracer,
		logger:                 logger,
		foodItemCreatedCounter: foodItemCreatedCounter,
		foodItemOperations:     foodItemOperations,
	}
}

// AddFoodItem validates and stores a single record. The record must carry its
// own type.
func (s *FoodItemService) AddFoodItem(ctx context.Context, raw domain.RawFoodItem) (*domain.FoodItem, error) {
	ctx, span := s.tracer.Start(ctx, "FoodItemService.AddFoodItem")
	defer span.End()

	item, err := buildFoodItem(raw, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.WarnContext(ctx, "Rejected food item",
			slog.String("error", err.Error()),
		)
		s.record(ctx, "create", "invalid")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("food_item.name", item.Name),
		attribute.String("food_item.category", item.Category.String()),
		attribute.Float64("food_item.quantity_grams", item.QuantityGrams),
	)

	if err := s.repo.Save(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store food item")
		s.logger.ErrorContext(ctx, "Failed to store food item",
			slog.String("error", err.Error()),
		)
		s.record(ctx, "create", "failure")
		return nil, fmt.Errorf("failed to store food item: %w", err)
	}

	s.foodItemCreatedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", item.Category.String())),
	)
	s.record(ctx, "create", "success")

	s.logger.InfoContext(ctx, "Food item created successfully",
		slog.String("food_item_id", item.ID),
	)

	span.SetStatus(codes.Ok, "Food item created successfully")
	return item, nil
}

// GetFoodItem retrieves an item by id
func (s *FoodItemService) GetFoodItem(ctx context.Context, id string) (*domain.FoodItem, error) {
	ctx, span := s.tracer.Start(ctx, "FoodItemService.GetFoodItem")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", id))

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrFoodItemNotFound) {
			span.SetStatus(codes.Error, "Food item not found")
			s.record(ctx, "read", "not_found")
			return nil, err
		}
		span.SetStatus(codes.Error, "Failed to retrieve food item")
		s.record(ctx, "read", "failure")
		return nil, fmt.Errorf("failed to retrieve food item: %w", err)
	}

	s.record(ctx, "read", "success")
	span.SetStatus(codes.Ok, "Food item retrieved successfully")
	return item, nil
}

// ListByCategory returns every stored item grouped by category
func (s *FoodItemService) ListByCategory(ctx context.Context) (map[domain.Category][]*domain.FoodItem, error) {
	ctx, span := s.tracer.Start(ctx, "FoodItemService.ListByCategory")
	defer span.End()

	groups := make(map[domain.Category][]*domain.FoodItem, len(domain.Categories()))
	for _, category := range domain.Categories() {
		items, err := s.repo.FindByCategory(ctx, category)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to list food items")
			s.logger.ErrorContext(ctx, "Failed to list food items",
				slog.String("category", category.String()),
				slog.String("error", err.Error()),
			)
			s.record(ctx, "list", "failure")
			return nil, fmt.Errorf("failed to list %s items: %w", category, err)
		}
		groups[category] = items
	}

	s.record(ctx, "list", "success")
	span.SetStatus(codes.Ok, "Food items listed successfully")
	return groups, nil
}

// DeleteFoodItem removes an item. A missing id yields false and no error.
func (s *FoodItemService) DeleteFoodItem(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "FoodItemService.DeleteFoodItem")
	defer span.End()

	span.SetAttributes(attribute.String("food_item.id", id))

	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrFoodItemNotFound) {
		s.record(ctx, "delete", "not_found")
		span.SetStatus(codes.Ok, "Food item already absent")
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to check food item existence")
		s.record(ctx, "delete", "failure")
		return false, fmt.Errorf("failed to check food item existence: %w", err)
	}

	if err := s.repo.Remove(ctx, item); err != nil {
		if errors.Is(err, domain.ErrFoodItemNotFound) {
			s.record(ctx, "delete", "not_found")
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete food item")
		s.record(ctx, "delete", "failure")
		return false, fmt.Errorf("failed to delete food item: %w", err)
	}

	s.logger.InfoContext(ctx, "Food item deleted",
		slog.String("food_item_id", id),
	)

	s.record(ctx, "delete", "success")
	span.SetStatus(codes.Ok, "Food item deleted")
	return true, nil
}

func (s *FoodItemService) record(ctx context.Context, operation, result string) {
	s.foodItemOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
