package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/logger"
)

// Event is the envelope published on the bus
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Handler processes a single event
type Handler func(ctx context.Context, event *Event) error

// Bus is a NATS-backed publish/subscribe event bus
type Bus struct {
	conn *nats.Conn
}

// Connect establishes a NATS connection and returns the bus
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// Publish serializes the payload and publishes it on the subject.
// A nil bus drops events so callers never need to branch on configuration.
func (b *Bus) Publish(ctx context.Context, subject string, payload interface{}) error {
	if b == nil || b.conn == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	event := Event{
		Type:       subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(subject, raw); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a queue-group subscription for the subject
func (b *Bus) Subscribe(ctx context.Context, subject, queueGroup string, handler Handler) error {
	if b == nil || b.conn == nil {
		return fmt.Errorf("event bus not connected")
	}

	_, err := b.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("eventbus: malformed event", zap.String("subject", subject), zap.Error(err))
			return
		}
		if err := handler(ctx, &event); err != nil {
			logger.Error("eventbus: handler failed", zap.String("subject", subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return nil
}

// Close drains the NATS connection
func (b *Bus) Close() {
	if b != nil && b.conn != nil {
		_ = b.conn.Drain()
	}
}
