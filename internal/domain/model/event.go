package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType names a notification topic.
type EventType string

const (
	EventNewOrder        EventType = "new-order"
	EventKitchenNewOrder EventType = "kitchen-new-order"
	EventKitchenUpdate   EventType = "kitchen-update"
)

// Event is a fire-and-forget notification about an order.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	OrderID    int64       `json:"orderId"`
	UserID     int64       `json:"userId"`
	Status     OrderStatus `json:"status"`
	ItemID     *int64      `json:"itemId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewOrderEvent builds an event describing the current state of order.
func NewOrderEvent(eventType EventType, order *Order) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		OccurredAt: time.Now().UTC(),
	}
}
