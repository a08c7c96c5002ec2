// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"time"

	"propdesk.backend/pkg/rabbitmq"
	"propdesk.backend/pkg/utils"
)

// Event types
const (
	OrderPending      = "order.pending"
	PurchaseCompleted = "purchase.completed"
)

// Envelope wraps every published event.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

type sink interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// Publisher sends enveloped events with the event type as routing key.
type Publisher struct {
	sink sink
	now  func() time.Time
}

var newProducer = func(url, exchange string) (sink, error) {
	p, err := rabbitmq.NewProducer(url, exchange)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewPublisher connects to RabbitMQ. An empty url yields a publisher that drops events.
func NewPublisher(url, exchange string) (*Publisher, error) {
	if url == "" {
		return &Publisher{sink: noopSink{}, now: time.Now}, nil
	}
	p, err := newProducer(url, exchange)
	if err != nil {
		return nil, err
	}
	return &Publisher{sink: p, now: time.Now}, nil
}

// Publish sends data as an event of eventType.
func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	return p.sink.Publish(ctx, eventType, Envelope{
		ID:         utils.GenerateUUIDv7().String(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Data:       data,
	})
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	p.sink.Close()
}

type noopSink struct{}

func (noopSink) Publish(context.Context, string, interface{}) error { return nil }
func (noopSink) Close()                                             {}
