package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFoodItemService(repo domain.FoodItemRepository) *FoodItemService {
	tracer, meter, logger := testTelemetry()
	return NewFoodItemService(repo, tracer, meter, logger)
}

func TestFoodItemService_AddFoodItem(t *testing.T) {
	tests := []struct {
		name      string
		raw       domain.RawFoodItem
		saveErr   error
		wantErr   bool
		wantField string
		wantGrams float64
	}{
		{
			name:      "valid kilograms",
			raw:       domain.RawFoodItem{"name": "Melon", "type": "fruit", "quantity": 1.5, "unit": "kg"},
			wantGrams: 1500,
		},
		{
			name:      "missing type",
			raw:       domain.RawFoodItem{"name": "Melon", "quantity": 1.5},
			wantErr:   true,
			wantField: domain.FieldType,
		},
		{
			name:      "zero quantity",
			raw:       domain.RawFoodItem{"name": "Melon", "type": "fruit", "quantity": 0},
			wantErr:   true,
			wantField: domain.FieldQuantity,
		},
		{
			name:    "store failure",
			raw:     domain.RawFoodItem{"name": "Melon", "type": "fruit", "quantity": 1},
			saveErr: errors.New("disk full"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockFoodItemRepository)
			repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.FoodItem")).Run(func(args mock.Arguments) {
				args.Get(1).(*domain.FoodItem).ID = "generated"
			}).Return(tt.saveErr).Maybe()
			svc := newTestFoodItemService(repo)

			item, err := svc.AddFoodItem(context.Background(), tt.raw)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, item)
				if tt.wantField != "" {
					var validationErr *domain.ValidationError
					require.ErrorAs(t, err, &validationErr)
					assert.Equal(t, tt.wantField, validationErr.Field)
					repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				} else {
					assert.ErrorIs(t, err, tt.saveErr)
					assert.False(t, domain.IsValidationError(err))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "generated", item.ID)
			assert.Equal(t, tt.wantGrams, item.QuantityGrams)
		})
	}
}

func TestFoodItemService_GetFoodItem(t *testing.T) {
	repo := new(MockFoodItemRepository)
	stored := &domain.FoodItem{ID: "abc", Name: "Kale", Category: domain.Vegetable, QuantityGrams: 200}
	repo.On("FindByID", mock.Anything, "abc").Return(stored, nil)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrFoodItemNotFound)
	svc := newTestFoodItemService(repo)

	item, err := svc.GetFoodItem(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, stored, item)

	_, err = svc.GetFoodItem(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrFoodItemNotFound)
}

func TestFoodItemService_ListByCategory(t *testing.T) {
	repo := new(MockFoodItemRepository)
	repo.On("FindByCategory", mock.Anything, domain.Fruit).Return([]*domain.FoodItem{{ID: "1", Name: "Fig"}}, nil)
	repo.On("FindByCategory", mock.Anything, domain.Vegetable).Return([]*domain.FoodItem{}, nil)
	svc := newTestFoodItemService(repo)

	groups, err := svc.ListByCategory(context.Background())

	require.NoError(t, err)
	assert.Len(t, groups[domain.Fruit], 1)
	require.Contains(t, groups, domain.Vegetable)
	assert.Empty(t, groups[domain.Vegetable])
}

func TestFoodItemService_DeleteFoodItem(t *testing.T) {
	stored := &domain.FoodItem{ID: "abc", Name: "Kale", Category: domain.Vegetable, QuantityGrams: 200}

	t.Run("existing item", func(t *testing.T) {
		repo := new(MockFoodItemRepository)
		repo.On("FindByID", mock.Anything, "abc").Return(stored, nil)
		repo.On("Remove", mock.Anything, stored).Return(nil).Once()
		svc := newTestFoodItemService(repo)

		removed, err := svc.DeleteFoodItem(context.Background(), "abc")

		require.NoError(t, err)
		assert.True(t, removed)
		repo.AssertExpectations(t)
	})

	t.Run("missing item is not an error", func(t *testing.T) {
		repo := new(MockFoodItemRepository)
		repo.On("FindByID", mock.Anything, "abc").Return(nil, domain.ErrFoodItemNotFound)
		svc := newTestFoodItemService(repo)

		removed, err := svc.DeleteFoodItem(context.Background(), "abc")

		require.NoError(t, err)
		assert.False(t, removed)
		repo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("removed concurrently", func(t *testing.T) {
		repo := new(MockFoodItemRepository)
		repo.On("FindByID", mock.Anything, "abc").Return(stored, nil)
		repo.On("Remove", mock.Anything, stored).Return(domain.ErrFoodItemNotFound)
		svc := newTestFoodItemService(repo)

		removed, err := svc.DeleteFoodItem(context.Background(), "abc")

		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockFoodItemRepository)
		repo.On("FindByID", mock.Anything, "abc").Return(nil, errors.New("unreachable"))
		svc := newTestFoodItemService(repo)

		removed, err := svc.DeleteFoodItem(context.Background(), "abc")

		require.Error(t, err)
		assert.False(t, removed)
	})
}
