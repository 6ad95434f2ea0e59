package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SearchService answers criteria searches, grouped by category
type SearchService struct {
	repo     domain.FoodItemRepository
	tracer   trace.Tracer
	logger   *slog.Logger
	searches metric.Int64Counter
}

// NewSearchService creates a new search service
func NewSearchService(
	repo domain.FoodItemRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *SearchService {
	searches, _ := meter.Int64Counter(
		"fooditems.searches",
		metric.WithDescription("Total number of food item searches"),
	)

	return &SearchService{
		repo:     repo,
		tracer:   tracer,
		logger:   logger,
		searches: searches,
	}
}

// Search queries one category, or every category when category is empty.
// The returned map holds a key for each queried category.
func (s *SearchService) Search(ctx context.Context, category string, params map[string]string) (map[domain.Category][]*domain.FoodItem, error) {
	ctx, span := s.tracer.Start(ctx, "SearchService.Search")
	defer span.End()

	span.SetAttributes(attribute.String("search.category", category))

	categories := domain.Categories()
	if category != "" {
		parsed, ok := domain.ParseCategory(category)
		if !ok {
			err := fmt.Errorf(`%w: invalid type, allowed types are "fruit" and "vegetable"`, domain.ErrInvalidArgument)
			s.fail(ctx, span, err, "invalid_category")
			return nil, err
		}
		categories = []domain.Category{parsed}
	}

	criteria, err := domain.ParseSearchCriteria(params)
	if err != nil {
		s.fail(ctx, span, err, "invalid_criteria")
		return nil, err
	}

	quantity := ""
	if criteria.Quantity != nil {
		quantity = criteria.Quantity.String()
	}
	span.SetAttributes(
		attribute.String("search.name", criteria.Name),
		attribute.String("search.quantity", quantity),
	)

	results := make(map[domain.Category][]*domain.FoodItem, len(categories))
	for _, c := range categories {
		items, err := s.repo.FindByCategoryAndCriteria(ctx, c, criteria)
		if err != nil {
			s.fail(ctx, span, err, "failure")
			return nil, fmt.Errorf("failed to search %s items: %w", c, err)
		}
		results[c] = items
		span.SetAttributes(attribute.Int("search.results."+c.String(), len(items)))
	}

	s.searches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "success")))

	s.logger.InfoContext(ctx, "Food items searched",
		slog.String("category", category),
		slog.String("name", criteria.Name),
		slog.String("quantity", quantity),
	)

	span.SetStatus(codes.Ok, "Search completed")
	return results, nil
}

func (s *SearchService) fail(ctx context.Context, span trace.Span, err error, result string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.WarnContext(ctx, "Food item search failed",
		slog.String("error", err.Error()),
	)
	s.searches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
