package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/smallbiznis/stockbook/internal/config"
	obscontext "github.com/smallbiznis/stockbook/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewEventCarriesRequestID(t *testing.T) {
	ctx := obscontext.WithRequestID(context.Background(), "req-7")

	event, err := NewEvent(ctx, EventTypeStockLow, "42", StockLow{ProductID: "42", AvailableQty: 1, MinQty: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "req-7", event.RequestID)

	var payload StockLow
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, int64(5), payload.MinQty)
}

func TestRecorderFiltersByType(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()
	require.NoError(t, rec.Publish(ctx, EventTypeOrderCreated, "1", OrderCreated{OrderID: "1"}))
	require.NoError(t, rec.Publish(ctx, EventTypeStockLow, "2", StockLow{ProductID: "2"}))

	assert.Len(t, rec.Events(""), 2)
	assert.Len(t, rec.Events(EventTypeOrderCreated), 1)
}

func TestNewPublisherWithoutBrokersLogsOnly(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	pub := NewPublisher(PublisherParams{
		Lifecycle: lc,
		Config:    config.Config{},
		Log:       zap.NewNop(),
	})
	_, ok := pub.(*LogPublisher)
	assert.True(t, ok)
	assert.NoError(t, pub.Publish(context.Background(), EventTypeOrderCreated, "1", OrderCreated{}))
}

func TestNewPublisherWithBrokersUsesKafka(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	pub := NewPublisher(PublisherParams{
		Lifecycle: lc,
		Config:    config.Config{Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}},
		Log:       zap.NewNop(),
	})
	_, ok := pub.(*KafkaPublisher)
	assert.True(t, ok)
	assert.NoError(t, pub.Close())
}
