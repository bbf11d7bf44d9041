package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// DefaultPointsPerCurrencyUnit is the amount of money that earns one point.
const DefaultPointsPerCurrencyUnit int64 = 10000

// DefaultLoyaltyTiers is used when no tier table is configured.
var DefaultLoyaltyTiers = []model.LoyaltyTier{
	{Name: "MEMBER", MinPoints: 0, Rate: decimal.Zero},
	{Name: "SILVER", MinPoints: 100, Rate: decimal.RequireFromString("0.02")},
	{Name: "GOLD", MinPoints: 500, Rate: decimal.RequireFromString("0.05")},
	{Name: "DIAMOND", MinPoints: 1000, Rate: decimal.RequireFromString("0.10")},
}

// LoyaltyPolicy maps accumulated points to discounts and order totals to points.
type LoyaltyPolicy struct {
	tiers         []model.LoyaltyTier
	pointsPerUnit decimal.Decimal
}

// NewLoyaltyPolicy constructs LoyaltyPolicy. Empty tiers fall back to DefaultLoyaltyTiers.
func NewLoyaltyPolicy(tiers []model.LoyaltyTier, pointsPerUnit int64) *LoyaltyPolicy {
	if len(tiers) == 0 {
		tiers = DefaultLoyaltyTiers
	}
	if pointsPerUnit <= 0 {
		pointsPerUnit = DefaultPointsPerCurrencyUnit
	}
	sorted := append([]model.LoyaltyTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })
	return &LoyaltyPolicy{tiers: sorted, pointsPerUnit: decimal.NewFromInt(pointsPerUnit)}
}

func newLoyaltyPolicy(cfg *config.Config) *LoyaltyPolicy {
	return NewLoyaltyPolicy(cfg.LoyaltyTiers, cfg.PointsPerCurrencyUnit)
}

// Tier returns the highest tier whose threshold points reach.
func (p *LoyaltyPolicy) Tier(points int64) model.LoyaltyTier {
	tier := model.LoyaltyTier{Rate: decimal.Zero}
	for _, t := range p.tiers {
		if points >= t.MinPoints {
			tier = t
		}
	}
	return tier
}

// Discount returns the automatic tier discount on subtotal.
func (p *LoyaltyPolicy) Discount(points int64, subtotal decimal.Decimal) decimal.Decimal {
	rate := p.Tier(points).Rate
	if !rate.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Mul(rate).Round(2)
}

// PointsFor returns floor(total / pointsPerUnit).
func (p *LoyaltyPolicy) PointsFor(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(p.pointsPerUnit).Floor().IntPart()
}
