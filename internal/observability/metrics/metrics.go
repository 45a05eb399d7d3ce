package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	orderAmount       metric.Float64Counter
	taxSplits         metric.Int64Counter
	stockLow          metric.Int64Counter
	idempotentReplays metric.Int64Counter
	eventsPublished   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "stockbook"
	}
	meter := provider.Meter(name)

	ordersCreated, err := meter.Int64Counter("stockbook_orders_created_total")
	if err != nil {
		return nil, err
	}
	orderAmount, err := meter.Float64Counter("stockbook_order_amount_total",
		metric.WithDescription("Grand total of created orders in INR"))
	if err != nil {
		return nil, err
	}
	taxSplits, err := meter.Int64Counter("stockbook_tax_splits_total")
	if err != nil {
		return nil, err
	}
	stockLow, err := meter.Int64Counter("stockbook_stock_low_total")
	if err != nil {
		return nil, err
	}
	idempotentReplays, err := meter.Int64Counter("stockbook_idempotent_replays_total")
	if err != nil {
		return nil, err
	}
	eventsPublished, err := meter.Int64Counter("stockbook_events_published_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersCreated:     ordersCreated,
		orderAmount:       orderAmount,
		taxSplits:         taxSplits,
		stockLow:          stockLow,
		idempotentReplays: idempotentReplays,
		eventsPublished:   eventsPublished,
	}, nil
}

// RecordOrderCreated counts a persisted order and its grand total.
func (m *Metrics) RecordOrderCreated(ctx context.Context, orderType string, grandTotal float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("order_type", strings.TrimSpace(orderType)))
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.orderAmount.Add(ctx, grandTotal, metric.WithAttributes(attrs...))
}

// RecordTaxSplit counts tax splits by supply type.
func (m *Metrics) RecordTaxSplit(ctx context.Context, supplyType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("supply_type", strings.TrimSpace(supplyType)))
	m.taxSplits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordStockLow(ctx context.Context) {
	if m == nil {
		return
	}
	m.stockLow.Add(ctx, 1)
}

func (m *Metrics) RecordIdempotentReplay(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.idempotentReplays.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEventPublished counts outbound domain events by type and outcome.
func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("status", status),
	)
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"order_type":  {},
	"supply_type": {},
	"endpoint":    {},
	"status":      {},
	"status_code": {},
	"event_type":  {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
