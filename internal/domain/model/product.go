package model

import "github.com/shopspring/decimal"

// Product is a catalog entry with its live stock counter.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	Stock      int
	Active     bool
	CategoryID *int64
}

// CartItem is a line of a user's active cart.
type CartItem struct {
	UserID    int64
	ProductID int64
	Quantity  int
}
