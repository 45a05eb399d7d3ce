package events

import (
	"context"

	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

type PublisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// log-only publisher otherwise.
func NewPublisher(p PublisherParams) Publisher {
	if !p.Config.Kafka.Enabled() {
		p.Log.Info("kafka brokers not configured, events are logged only")
		return NewLogPublisher(p.Log)
	}

	publisher := NewKafkaPublisher(p.Config.Kafka, p.Log, p.Metrics)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
