package dto

import "time"

// ShippingRequest carries a delivery address.
type ShippingRequest struct {
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Note        string `json:"note"`
}

// ShippingResponse describes a delivery address.
type ShippingResponse struct {
	Phone       string     `json:"phone"`
	AddressLine string     `json:"addressLine"`
	City        string     `json:"city"`
	Note        string     `json:"note,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}
