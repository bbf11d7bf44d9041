package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest is one requested product quantity.
type OrderLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderRequest describes POST /api/orders payload.
type PlaceOrderRequest struct {
	Items         []OrderLineRequest `json:"items"`
	PromoCode     string             `json:"promoCode"`
	PaymentMethod string             `json:"paymentMethod"`
	Shipping      *ShippingRequest   `json:"shipping,omitempty"`
}

// OrderItemResponse describes an order line.
type OrderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Status      string          `json:"status"`
	ChefID      *int64          `json:"chefId,omitempty"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"userId"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"paymentMethod"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	PromoDiscount   decimal.Decimal     `json:"promoDiscount"`
	LoyaltyDiscount decimal.Decimal     `json:"loyaltyDiscount"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	PromotionCode   *string             `json:"promotionCode,omitempty"`
	Shipping        ShippingResponse    `json:"shipping"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
