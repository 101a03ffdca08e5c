package event

import (
	"time"

	"github.com/google/uuid"
)

// Topics for storefront events.
const (
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
)

// Event is the envelope published to the broker.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent builds an envelope with a fresh id and current timestamp.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "storefront",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// OrderCreated is the payload for TopicOrderCreated.
type OrderCreated struct {
	OrderID string  `json:"order_id"`
	Number  string  `json:"number"`
	Email   string  `json:"email"`
	Total   float64 `json:"total"`
}

// OrderStatusChanged is the payload for TopicOrderStatusChanged.
type OrderStatusChanged struct {
	OrderID string `json:"order_id"`
	Number  string `json:"number"`
	From    string `json:"from"`
	To      string `json:"to"`
}
