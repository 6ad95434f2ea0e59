package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher announces committed batches to interested consumers
type EventPublisher interface {
	PublishBatchIngested(ctx context.Context, event domain.BatchIngested) error
}

// BatchProcessor validates, partitions and persists batches of raw food items
type BatchProcessor struct {
	repo          domain.FoodItemRepository
	publisher     EventPublisher
	tracer        trace.Tracer
	logger        *slog.Logger
	itemsCounter  metric.Int64Counter
	batchDuration metric.Float64Histogram
}

// NewBatchProcessor creates a new batch processor. publisher may be nil.
func NewBatchProcessor(
	repo domain.FoodItemRepository,
	publisher EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *BatchProcessor {
	itemsCounter, _ := meter.Int64Counter(
		"fooditems.batch.items",
		metric.WithDescription("Batch records by processing result"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"fooditems.batch.duration",
		metric.WithDescription("Batch processing duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &BatchProcessor{
		repo:          repo,
		publisher:     publisher,
		tracer:        tracer,
		logger:        logger,
		itemsCounter:  itemsCounter,
		batchDuration: batchDuration,
	}
}

// Process validates every record independently and commits the valid ones
// together. Rejected records are collected in the result, never returned as
// an error. The only error is a failed commit, wrapping domain.ErrBatchCommit.
func (p *BatchProcessor) Process(ctx context.Context, rawItems []domain.RawFoodItem, forced *domain.Category) (*domain.BatchResult, error) {
	ctx, span := p.tracer.Start(ctx, "BatchProcessor.Process")
	defer span.End()

	start := time.Now()
	span.SetAttributes(attribute.Int("batch.size", len(rawItems)))
	if forced != nil {
		span.SetAttributes(attribute.String("batch.forced_category", forced.String()))
	}

	p.logger.InfoContext(ctx, "Processing food item batch",
		slog.Int("size", len(rawItems)),
	)

	result := domain.NewBatchResult()
	accepted := make([]*domain.FoodItem, 0, len(rawItems))

	for index, raw := range rawItems {
		item, err := buildFoodItem(raw, forced)
		if err != nil {
			result.Errors = append(result.Errors, newItemError(index, raw, err))
			continue
		}

		if unit, lenient := lenientUnit(raw); lenient {
			p.logger.WarnContext(ctx, "Unrecognized unit treated as grams",
				slog.Int("index", index),
				slog.String("unit", unit),
				slog.Bool("unit_lenient", true),
			)
		}

		accepted = append(accepted, item)
		result.Processed[item.Category] = append(result.Processed[item.Category], item)
		result.Successful = true
	}

	p.itemsCounter.Add(ctx, int64(len(accepted)), metric.WithAttributes(attribute.String("result", "processed")))
	p.itemsCounter.Add(ctx, int64(len(result.Errors)), metric.WithAttributes(attribute.String("result", "rejected")))

	span.SetAttributes(
		attribute.Int("batch.processed", len(accepted)),
		attribute.Int("batch.rejected", len(result.Errors)),
	)

	if result.Successful {
		if err := p.repo.SaveAll(ctx, accepted); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to commit batch")
			p.logger.ErrorContext(ctx, "Failed to commit food item batch",
				slog.Int("processed", len(accepted)),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("%w: %w", domain.ErrBatchCommit, err)
		}
		p.publish(ctx, result, accepted)
	}

	p.batchDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.Bool("successful", result.Successful)),
	)

	p.logger.InfoContext(ctx, "Food item batch processed",
		slog.Int("processed", len(accepted)),
		slog.Int("rejected", len(result.Errors)),
		slog.Bool("successful", result.Successful),
	)

	span.SetStatus(codes.Ok, "Batch processed")
	return result, nil
}

func (p *BatchProcessor) publish(ctx context.Context, result *domain.BatchResult, committed []*domain.FoodItem) {
	if p.publisher == nil {
		return
	}

	event := domain.BatchIngested{
		BatchID:    uuid.NewString(),
		ItemIDs:    make([]string, len(committed)),
		Counts:     make(map[domain.Category]int, len(result.Processed)),
		Rejected:   len(result.Errors),
		OccurredAt: time.Now().UTC(),
	}
	for i, item := range committed {
		event.ItemIDs[i] = item.ID
	}
	for category, items := range result.Processed {
		event.Counts[category] = len(items)
	}

	if err := p.publisher.PublishBatchIngested(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish batch event",
			slog.String("batch_id", event.BatchID),
			slog.String("error", err.Error()),
		)
	}
}

func newItemError(index int, raw domain.RawFoodItem, err error) domain.ItemError {
	itemErr := domain.ItemError{
		Index:   index,
		Item:    raw,
		Message: err.Error(),
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		itemErr.Field = validationErr.Field
	}
	return itemErr
}
