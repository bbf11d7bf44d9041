package dto

// PaymentLinkResponse carries the hosted checkout page of an order.
type PaymentLinkResponse struct {
	OrderID     int64  `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
}
