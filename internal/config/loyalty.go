package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

type tierFile struct {
	Tiers []struct {
		Name      string `yaml:"name"`
		MinPoints int64  `yaml:"min_points"`
		Rate      string `yaml:"rate"`
	} `yaml:"tiers"`
}

// LoadLoyaltyTiers reads a tier table such as:
//
//	tiers:
//	  - name: SILVER
//	    min_points: 100
//	    rate: "0.02"
func LoadLoyaltyTiers(path string) ([]model.LoyaltyTier, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read loyalty tiers: %w", err)
	}
	return parseLoyaltyTiers(content)
}

func parseLoyaltyTiers(content []byte) ([]model.LoyaltyTier, error) {
	var file tierFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse loyalty tiers: %w", err)
	}
	if len(file.Tiers) == 0 {
		return nil, fmt.Errorf("loyalty tiers file has no tiers")
	}

	tiers := make([]model.LoyaltyTier, 0, len(file.Tiers))
	for _, t := range file.Tiers {
		name := strings.ToUpper(strings.TrimSpace(t.Name))
		if name == "" {
			return nil, fmt.Errorf("loyalty tier without name")
		}
		if t.MinPoints < 0 {
			return nil, fmt.Errorf("loyalty tier %s: negative min_points", name)
		}
		rate := decimal.Zero
		if raw := strings.TrimSpace(t.Rate); raw != "" {
			var err error
			if rate, err = decimal.NewFromString(raw); err != nil {
				return nil, fmt.Errorf("loyalty tier %s: invalid rate: %w", name, err)
			}
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("loyalty tier %s: rate must be in [0, 1)", name)
		}
		tiers = append(tiers, model.LoyaltyTier{Name: name, MinPoints: t.MinPoints, Rate: rate})
	}
	return tiers, nil
}
