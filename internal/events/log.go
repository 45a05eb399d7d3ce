package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log only. It is used when no broker is
// configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events.log")}
}

func (p *LogPublisher) Publish(ctx context.Context, eventType EventType, key string, payload any) error {
	event, err := NewEvent(ctx, eventType, key, payload)
	if err != nil {
		return err
	}
	p.log.Debug("event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("key", event.Key),
		zap.ByteString("data", event.Data),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, eventType EventType, key string, payload any) error {
	event, err := NewEvent(ctx, eventType, key, payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, *event)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns the recorded events of the given type, or all of them when
// eventType is empty.
func (r *Recorder) Events(eventType EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if eventType == "" || event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
