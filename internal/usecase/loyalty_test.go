package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

func TestLoyaltyPolicyTier(t *testing.T) {
	policy := NewLoyaltyPolicy(nil, 0)

	cases := map[int64]string{
		0:    "MEMBER",
		99:   "MEMBER",
		100:  "SILVER",
		499:  "SILVER",
		500:  "GOLD",
		999:  "GOLD",
		1000: "DIAMOND",
		9000: "DIAMOND",
	}
	for points, want := range cases {
		assert.Equalf(t, want, policy.Tier(points).Name, "points %d", points)
	}
}

func TestLoyaltyPolicyCustomTiersAreSorted(t *testing.T) {
	policy := NewLoyaltyPolicy([]model.LoyaltyTier{
		{Name: "TOP", MinPoints: 50, Rate: money("0.5")},
		{Name: "BASE", MinPoints: 10, Rate: money("0.1")},
	}, 100)

	assert.Equal(t, "", policy.Tier(5).Name)
	assert.Equal(t, "BASE", policy.Tier(10).Name)
	assert.Equal(t, "TOP", policy.Tier(60).Name)
	requireMoney(t, "0", policy.Discount(5, money("100")))
	requireMoney(t, "50", policy.Discount(60, money("100")))
	assert.Equal(t, int64(3), policy.PointsFor(money("399.99")))
}

func TestLoyaltyPolicyDiscount(t *testing.T) {
	policy := NewLoyaltyPolicy(nil, DefaultPointsPerCurrencyUnit)

	requireMoney(t, "0", policy.Discount(0, money("300")))
	requireMoney(t, "6", policy.Discount(100, money("300")))
	requireMoney(t, "15", policy.Discount(500, money("300")))
	requireMoney(t, "30", policy.Discount(1500, money("300")))
	requireMoney(t, "0.33", policy.Discount(1000, money("3.33")))
	requireMoney(t, "0", policy.Discount(1000, money("0")))
}

func TestLoyaltyPolicyPointsFor(t *testing.T) {
	policy := NewLoyaltyPolicy(nil, 10000)

	assert.Equal(t, int64(23), policy.PointsFor(money("235000")))
	assert.Equal(t, int64(0), policy.PointsFor(money("9999.99")))
	assert.Equal(t, int64(1), policy.PointsFor(money("10000")))
	assert.Equal(t, int64(0), policy.PointsFor(money("-10000")))
}

func TestNewLoyaltyPolicyFromConfig(t *testing.T) {
	policy := newLoyaltyPolicy(&config.Config{
		PointsPerCurrencyUnit: 1000,
		LoyaltyTiers:          []model.LoyaltyTier{{Name: "ONLY", MinPoints: 0, Rate: money("0.01")}},
	})

	assert.Equal(t, "ONLY", policy.Tier(0).Name)
	assert.Equal(t, int64(2), policy.PointsFor(money("2500")))
}
