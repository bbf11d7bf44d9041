package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// ParsePaymentMethod normalizes raw input; blank means cash on delivery.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch method {
	case "":
		return PaymentMethodCOD, nil
	case PaymentMethodCOD, PaymentMethodOnline:
		return method, nil
	}
	return "", domainErrors.Validation("unknown payment method " + raw)
}

// Order describes a placed purchase with its frozen lines.
type Order struct {
	ID              int64
	UserID          int64
	Items           []OrderItem
	Subtotal        decimal.Decimal
	PromoDiscount   decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Status          OrderStatus
	PromotionCode   *string
	PaymentMethod   PaymentMethod
	Shipping        ShippingAddress
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a line of an order. Name and price are snapshots taken at placement.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Status      ItemStatus
	ChefID      *int64
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Item returns the line with the given id.
func (o *Order) Item(itemID int64) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID int64) bool {
	return o.UserID == userID
}

// OrderLine is a requested product quantity before pricing.
type OrderLine struct {
	ProductID int64
	Quantity  int
}
