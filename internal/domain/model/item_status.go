package model

import (
	"strings"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
)

// ItemStatus is the cooking state of a single order line.
type ItemStatus string

const (
	ItemStatusPending ItemStatus = "PENDING"
	ItemStatusCooking ItemStatus = "COOKING"
	ItemStatusDone    ItemStatus = "DONE"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusPending: {ItemStatusCooking},
	ItemStatusCooking: {ItemStatusPending, ItemStatusDone},
}

// ParseItemStatus normalizes raw input.
func ParseItemStatus(raw string) (ItemStatus, error) {
	status := ItemStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case ItemStatusPending, ItemStatusCooking, ItemStatusDone:
		return status, nil
	}
	return "", domainErrors.Validation("unknown item status " + raw)
}

func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AggregateOrderStatus derives the parent status from its items:
// all DONE gives DELIVERING, any COOKING or DONE gives PREPARING, otherwise CONFIRMED.
func AggregateOrderStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderStatusConfirmed
	}
	done, started := 0, 0
	for _, item := range items {
		switch item.Status {
		case ItemStatusDone:
			done++
			started++
		case ItemStatusCooking:
			started++
		}
	}
	switch {
	case done == len(items):
		return OrderStatusDelivering
	case started > 0:
		return OrderStatusPreparing
	default:
		return OrderStatusConfirmed
	}
}
