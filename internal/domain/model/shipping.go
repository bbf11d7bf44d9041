package model

import (
	"strings"
	"time"
)

// ShippingAddress is a delivery address. Orders keep a copy of it.
type ShippingAddress struct {
	Phone       string
	AddressLine string
	City        string
	Note        string
}

// IsZero reports whether no address was supplied.
func (a ShippingAddress) IsZero() bool {
	return strings.TrimSpace(a.Phone) == "" &&
		strings.TrimSpace(a.AddressLine) == "" &&
		strings.TrimSpace(a.City) == ""
}

// Complete reports whether every required field is set.
func (a ShippingAddress) Complete() bool {
	return strings.TrimSpace(a.Phone) != "" &&
		strings.TrimSpace(a.AddressLine) != "" &&
		strings.TrimSpace(a.City) != ""
}

// ShippingInfo is the user's default delivery address.
type ShippingInfo struct {
	UserID int64
	ShippingAddress
	UpdatedAt time.Time
}
