package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order status values. The set is closed; transitions outside
// AllowedTransitions are rejected before any write.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Customer is the checkout identity and shipping address frozen onto an
// order. Name, email and the full shipping address are required.
type Customer struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// OrderItem is a frozen, historical copy of a cart line: product name and
// unit price are copied, not referenced, so later catalog edits never alter
// placed orders.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// Order is a placed order. Status is the only field mutated after creation;
// orders are never deleted, only transitioned to a terminal status.
type Order struct {
	ID             string      `json:"id"`
	Number         string      `json:"number"`
	IdempotencyKey string      `json:"-"`
	Customer       Customer    `json:"customer"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	Shipping       float64     `json:"shipping"`
	Tax            float64     `json:"tax"`
	Total          float64     `json:"total"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ValidStatuses returns all order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks membership in the closed status set.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines the order state machine: strictly forward along
// pending → processing → shipped → delivered, with cancellation possible only
// before shipment. Delivered and cancelled are terminal.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}
}

// CanTransitionTo checks the state machine for a proposed status change.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// NewOrderNumber generates the customer-facing order reference, distinct from
// the storage id: a millisecond time component plus a random suffix so
// concurrent submissions from different sessions never collide.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:9])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
