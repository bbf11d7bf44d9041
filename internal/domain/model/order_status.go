package model

import (
	"strings"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusPreparing  OrderStatus = "PREPARING"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDone       OrderStatus = "DONE"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusDelivering, OrderStatusDone, OrderStatusCancelled},
	OrderStatusDelivering: {OrderStatusDone, OrderStatusCancelled},
}

// ParseOrderStatus normalizes raw input. The alternate spelling CANCELED is accepted.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "CANCELED" {
		normalized = string(OrderStatusCancelled)
	}
	status := OrderStatus(normalized)
	if !status.Valid() {
		return "", domainErrors.Validation("unknown order status " + raw)
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusDelivering, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal move from s. Staying put is not a move.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone || s == OrderStatusCancelled
}

// IsKitchenActive reports whether the kitchen may work on an order in s.
func (s OrderStatus) IsKitchenActive() bool {
	return s == OrderStatusConfirmed || s == OrderStatusPreparing
}
