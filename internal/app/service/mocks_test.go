package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type MockFoodItemRepository struct {
	mock.Mock
}

func (m *MockFoodItemRepository) Save(ctx context.Context, item *domain.FoodItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockFoodItemRepository) SaveAll(ctx context.Context, items []*domain.FoodItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockFoodItemRepository) Remove(ctx context.Context, item *domain.FoodItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockFoodItemRepository) FindByID(ctx context.Context, id string) (*domain.FoodItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodItem), args.Error(1)
}

func (m *MockFoodItemRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.FoodItem, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FoodItem), args.Error(1)
}

func (m *MockFoodItemRepository) FindByCategoryAndCriteria(ctx context.Context, category domain.Category, criteria domain.SearchCriteria) ([]*domain.FoodItem, error) {
	args := m.Called(ctx, category, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FoodItem), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBatchIngested(ctx context.Context, event domain.BatchIngested) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testTelemetry() (trace.Tracer, metric.Meter, *slog.Logger) {
	return tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
		slog.New(slog.DiscardHandler)
}

// assignIDs mimics a store assigning ids during SaveAll
func assignIDs(args mock.Arguments) {
	for i, item := range args.Get(1).([]*domain.FoodItem) {
		item.ID = string(rune('a' + i))
	}
}
