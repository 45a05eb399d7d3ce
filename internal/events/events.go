// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	obscontext "github.com/smallbiznis/stockbook/internal/observability/context"
	"github.com/smallbiznis/stockbook/pkg/telemetry/correlation"
)

type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeStockLow           EventType = "stock.low"
)

type Event struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	Key           string          `json:"key"`
	Data          json.RawMessage `json:"data"`
	RequestID     string          `json:"request_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher delivers events. Publish failures never roll back the write
// that produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, key string, payload any) error
	Close() error
}

// NewEvent wraps payload in an envelope carrying the request identifiers
// found on ctx.
func NewEvent(ctx context.Context, eventType EventType, key string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            ulid.Make().String(),
		Type:          eventType,
		Key:           key,
		Data:          data,
		RequestID:     obscontext.RequestIDFromContext(ctx),
		CorrelationID: correlation.ExtractCorrelationID(ctx),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// OrderCreated is the payload of order.created.
type OrderCreated struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OrderType   string `json:"order_type"`
	GrandTotal  string `json:"grand_total"`
	SupplyType  string `json:"supply_type"`
	ItemCount   int    `json:"item_count"`
}

// OrderStatusChanged is the payload of order.status_changed.
type OrderStatusChanged struct {
	OrderID        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// StockLow is the payload of stock.low.
type StockLow struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	AvailableQty int64  `json:"available_qty"`
	MinQty       int64  `json:"min_qty"`
}
