package models

import "time"

// Product lifecycle event types. They double as routing keys on the event exchange.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent is published after a product has been created, updated or deleted.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  int64     `json:"product_id"`
	Product    *Product  `json:"product,omitempty"` // Nil for deletions
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent builds an event stamped with the current UTC time.
func NewProductEvent(eventType string, id int64, product *Product) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}
