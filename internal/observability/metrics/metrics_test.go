package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("order_type", "sale"),
		attribute.String("customer_id", "456"),
		attribute.String("supply_type", "inter_state"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("order_type"))
	assert.Contains(t, keys, attribute.Key("supply_type"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordOrderCreated(ctx, "sale", 10)
	m.RecordTaxSplit(ctx, "intra_state")
	m.RecordStockLow(ctx)
	m.RecordIdempotentReplay(ctx, "/api/orders")
	m.RecordEventPublished(ctx, "order.created", true)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordOrderCreated(context.Background(), "purchase", 99.5)
}
