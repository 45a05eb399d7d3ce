package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/observability/metrics"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer  *kafka.Writer
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger, m *metrics.Metrics) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer:  writer,
		log:     log.Named("events.kafka"),
		metrics: m,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, key string, payload any) error {
	event, err := NewEvent(ctx, eventType, key, payload)
	if err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.RecordEventPublished(ctx, string(eventType), false)
		p.log.Error("failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("key", event.Key),
			zap.Error(err),
		)
		return err
	}

	p.metrics.RecordEventPublished(ctx, string(eventType), true)
	p.log.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("key", event.Key),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.log.Info("closing kafka publisher")
	return p.writer.Close()
}
