package services

import (
	"encoding/json"
	"fmt"

	"catalog/internal/models"
)

// Publisher sends a message to an exchange with a routing key.
// *rabbitmq.Client satisfies it.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// EventPublisher publishes product lifecycle events to a fixed exchange.
type EventPublisher struct {
	publisher Publisher
	exchange  string
}

// NewEventPublisher returns nil when publisher is nil, which disables events.
func NewEventPublisher(publisher Publisher, exchange string) *EventPublisher {
	if publisher == nil {
		return nil
	}
	return &EventPublisher{publisher: publisher, exchange: exchange}
}

// PublishProductEvent marshals the event to JSON and publishes it using the event
// type as routing key.
func (p *EventPublisher) PublishProductEvent(event models.ProductEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if err := p.publisher.Publish(p.exchange, event.Type, body); err != nil {
		return fmt.Errorf("failed to publish %s event for product %d: %w", event.Type, event.ProductID, err)
	}
	return nil
}
