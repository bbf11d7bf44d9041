package model

import "github.com/shopspring/decimal"

// LoyaltyTier is a discount bracket unlocked by accumulated points.
type LoyaltyTier struct {
	Name      string
	MinPoints int64
	Rate      decimal.Decimal
}
