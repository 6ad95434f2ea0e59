package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) WriteMessage(ctx context.Context, msg kafka.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestPublisher(producer Producer) *BatchEventPublisher {
	return NewBatchEventPublisher(producer, noop.NewTracerProvider().Tracer("test"), slog.New(slog.DiscardHandler))
}

func TestBatchEventPublisher_Publish(t *testing.T) {
	producer := new(MockProducer)
	var sent kafka.Message
	producer.On("WriteMessage", mock.Anything, mock.AnythingOfType("kafka.Message")).Run(func(args mock.Arguments) {
		sent = args.Get(1).(kafka.Message)
	}).Return(nil).Once()

	event := domain.BatchIngested{
		BatchID:    "batch-1",
		ItemIDs:    []string{"a", "b"},
		Counts:     map[domain.Category]int{domain.Fruit: 1, domain.Vegetable: 1},
		Rejected:   2,
		OccurredAt: time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
	}

	err := newTestPublisher(producer).PublishBatchIngested(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, []byte("batch-1"), sent.Key)
	require.Len(t, sent.Headers, 1)
	assert.Equal(t, "event-type", sent.Headers[0].Key)
	assert.Equal(t, BatchIngestedEventType, string(sent.Headers[0].Value))

	var decoded domain.BatchIngested
	require.NoError(t, json.Unmarshal(sent.Value, &decoded))
	assert.Equal(t, event, decoded)
	producer.AssertExpectations(t)
}

func TestBatchEventPublisher_PublishError(t *testing.T) {
	producer := new(MockProducer)
	writeErr := errors.New("leader not available")
	producer.On("WriteMessage", mock.Anything, mock.Anything).Return(writeErr)

	err := newTestPublisher(producer).PublishBatchIngested(context.Background(), domain.BatchIngested{BatchID: "x"})

	assert.ErrorIs(t, err, writeErr)
}

func TestBatchEventPublisher_Close(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Close").Return(nil).Once()

	require.NoError(t, newTestPublisher(producer).Close())
	producer.AssertExpectations(t)
}
