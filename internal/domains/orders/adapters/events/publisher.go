// Package events forwards order domain events to the message bus.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/ventrest-api/internal/domains/orders/domain"
	"github.com/Apurer/ventrest-api/internal/domains/orders/ports"
	"github.com/Apurer/ventrest-api/internal/platform/messaging"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Envelope is the wire shape of every order event.
type Envelope struct {
	Type       string       `json:"type"`
	OrderID    string       `json:"orderId"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    domain.Event `json:"payload"`
}

// Publisher keys each event by order ID so one order's events stay ordered on a partition.
type Publisher struct {
	bus messaging.Publisher
}

// NewPublisher wraps a messaging publisher.
func NewPublisher(bus messaging.Publisher) *Publisher {
	return &Publisher{bus: bus}
}

// Publish sends event inside an Envelope.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.bus == nil {
		return errors.New("event bus not configured")
	}
	if event == nil {
		return errors.New("event is nil")
	}
	id := event.AggregateID().String()
	return p.bus.Publish(ctx, id, Envelope{
		Type:       event.EventName(),
		OrderID:    id,
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    event,
	})
}
