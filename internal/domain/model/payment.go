package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the processor outcome recorded for an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Payment tracks the single online payment attempt of an order.
type Payment struct {
	ID          int64
	OrderID     int64
	Amount      decimal.Decimal
	ProviderRef string
	LinkRef     string
	CheckoutURL string
	Status      PaymentStatus
	Signature   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckoutLine is a priced line sent to the payment processor.
type CheckoutLine struct {
	Name       string
	Quantity   int
	UnitAmount decimal.Decimal
}

// CheckoutRequest asks the processor for a hosted payment page.
type CheckoutRequest struct {
	OrderID     int64
	Amount      decimal.Decimal
	Currency    string
	Description string
	Lines       []CheckoutLine
}

// CheckoutSession is the processor's answer to a CheckoutRequest.
type CheckoutSession struct {
	ProviderRef string
	LinkRef     string
	URL         string
}

// PaymentCallback is a verified processor notification. An empty Outcome
// means the event carries nothing to reconcile.
type PaymentCallback struct {
	EventID     string
	EventType   string
	ProviderRef string
	OrderID     int64
	Outcome     PaymentStatus
	Signature   string
}
