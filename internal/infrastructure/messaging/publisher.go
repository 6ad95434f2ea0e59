package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// BatchIngestedEventType is sent in the event-type header of every batch event
const BatchIngestedEventType = "fooditems.batch_ingested"

// Producer writes single messages to a preconfigured topic
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// NewProducer builds an instrumented Kafka writer for topic. Trace context is
// injected into message headers.
func NewProducer(brokers []string, topic, clientID string, tp trace.TracerProvider) (Producer, error) {
	base := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(topic),
				attribute.String("messaging.kafka.client_id", clientID),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka writer: %w", err)
	}
	return writer, nil
}

// BatchEventPublisher publishes ingestion events to Kafka
type BatchEventPublisher struct {
	producer Producer
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewBatchEventPublisher creates a new publisher over producer
func NewBatchEventPublisher(producer Producer, tracer trace.Tracer, logger *slog.Logger) *BatchEventPublisher {
	return &BatchEventPublisher{
		producer: producer,
		tracer:   tracer,
		logger:   logger,
	}
}

// PublishBatchIngested sends event keyed by its batch id
func (p *BatchEventPublisher) PublishBatchIngested(ctx context.Context, event domain.BatchIngested) error {
	ctx, span := p.tracer.Start(ctx, "BatchEventPublisher.PublishBatchIngested")
	defer span.End()

	span.SetAttributes(
		attribute.String("batch.id", event.BatchID),
		attribute.Int("batch.items", len(event.ItemIDs)),
	)

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return fmt.Errorf("failed to encode batch event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BatchID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(BatchIngestedEventType)},
		},
	}

	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish batch event: %w", err)
	}

	p.logger.InfoContext(ctx, "Batch event published",
		slog.String("batch_id", event.BatchID),
		slog.Int("items", len(event.ItemIDs)),
	)

	span.SetStatus(codes.Ok, "Event published")
	return nil
}

// Close flushes and closes the underlying producer
func (p *BatchEventPublisher) Close() error {
	return p.producer.Close()
}
