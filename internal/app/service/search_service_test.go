package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestSearchService(repo domain.FoodItemRepository) *SearchService {
	tracer, meter, logger := testTelemetry()
	return NewSearchService(repo, tracer, meter, logger)
}

func TestSearchService_AllCategories(t *testing.T) {
	repo := new(MockFoodItemRepository)
	apple := &domain.FoodItem{ID: "1", Name: "Apple", Category: domain.Fruit, QuantityGrams: 150}
	repo.On("FindByCategoryAndCriteria", mock.Anything, domain.Fruit, domain.SearchCriteria{Name: "app"}).
		Return([]*domain.FoodItem{apple}, nil).Once()
	repo.On("FindByCategoryAndCriteria", mock.Anything, domain.Vegetable, domain.SearchCriteria{Name: "app"}).
		Return([]*domain.FoodItem{}, nil).Once()
	svc := newTestSearchService(repo)

	results, err := svc.Search(context.Background(), "", map[string]string{"name": "app", "color": "red"})

	require.NoError(t, err)
	require.Contains(t, results, domain.Fruit)
	require.Contains(t, results, domain.Vegetable)
	assert.Equal(t, []*domain.FoodItem{apple}, results[domain.Fruit])
	assert.Empty(t, results[domain.Vegetable])
	repo.AssertExpectations(t)
}

func TestSearchService_SingleCategory(t *testing.T) {
	repo := new(MockFoodItemRepository)
	want := domain.SearchCriteria{
		Quantity: &domain.QuantityPredicate{Operator: domain.OpBetween, Low: 100, High: 500},
	}
	repo.On("FindByCategoryAndCriteria", mock.Anything, domain.Vegetable, want).
		Return([]*domain.FoodItem{}, nil).Once()
	svc := newTestSearchService(repo)

	results, err := svc.Search(context.Background(), "vegetable", map[string]string{"quantity": "100-500"})

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Contains(t, results, domain.Vegetable)
	repo.AssertExpectations(t)
}

func TestSearchService_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		category string
		params   map[string]string
		wantMsg  string
	}{
		{
			name:     "unknown category",
			category: "meat",
			params:   map[string]string{},
			wantMsg:  `allowed types are "fruit" and "vegetable"`,
		},
		{
			name:     "category checked before criteria",
			category: "meat",
			params:   map[string]string{"quantity": "abc"},
			wantMsg:  "invalid type",
		},
		{
			name:     "malformed quantity",
			category: "fruit",
			params:   map[string]string{"quantity": "abc"},
			wantMsg:  "invalid quantity filter format",
		},
		{
			name:    "malformed quantity across categories",
			params:  map[string]string{"quantity": "<=5"},
			wantMsg: "invalid quantity filter format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockFoodItemRepository)
			svc := newTestSearchService(repo)

			results, err := svc.Search(context.Background(), tt.category, tt.params)

			require.Error(t, err)
			assert.Nil(t, results)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.wantMsg)
			repo.AssertNotCalled(t, "FindByCategoryAndCriteria", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSearchService_RepositoryError(t *testing.T) {
	repo := new(MockFoodItemRepository)
	storeErr := errors.New("timeout")
	repo.On("FindByCategoryAndCriteria", mock.Anything, domain.Fruit, mock.Anything).Return(nil, storeErr)
	svc := newTestSearchService(repo)

	_, err := svc.Search(context.Background(), "fruit", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSearchService_RecordsCriteriaOnSpan(t *testing.T) {
	repo := new(MockFoodItemRepository)
	repo.On("FindByCategoryAndCriteria", mock.Anything, domain.Fruit, mock.Anything).
		Return([]*domain.FoodItem{}, nil).Once()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, _, logger := testTelemetry()
	svc := NewSearchService(repo, tp.Tracer("test"), metricnoop.NewMeterProvider().Meter("test"), logger)

	_, err := svc.Search(context.Background(), "fruit", map[string]string{"name": "app", "quantity": ">500"})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("search.name", "app"))
	assert.Contains(t, attrs, attribute.String("search.quantity", ">500"))
}
