package billing

import (
	"strings"

	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

// PriceTable maps Stripe price ids to membership tiers. One price per paid
// tier; free has no price and employee is never sold.
type PriceTable struct {
	byPrice map[string]permissions.Tier
}

// NewPriceTable builds a table from explicit price-id/tier pairs.
func NewPriceTable(paid, premium, mentorship string) PriceTable {
	t := PriceTable{byPrice: make(map[string]permissions.Tier, 3)}
	t.add(paid, permissions.TierPaid)
	t.add(premium, permissions.TierPremium)
	t.add(mentorship, permissions.TierMentorship)
	return t
}

// LoadPriceTable reads the per-tier price ids from the environment.
func LoadPriceTable() PriceTable {
	return NewPriceTable(
		env.GetEnv("STRIPE_PRICE_PAID", ""),
		env.GetEnv("STRIPE_PRICE_PREMIUM", ""),
		env.GetEnv("STRIPE_PRICE_MENTORSHIP", ""),
	)
}

func (t *PriceTable) add(priceID string, tier permissions.Tier) {
	priceID = strings.TrimSpace(priceID)
	if priceID != "" {
		t.byPrice[priceID] = tier
	}
}

// TierForPrice resolves a price id to its tier. The second return value is
// false for unmapped ids; callers fall back to free and log the anomaly.
func (t *PriceTable) TierForPrice(priceID string) (permissions.Tier, bool) {
	tier, ok := t.byPrice[strings.TrimSpace(priceID)]
	if !ok {
		return permissions.TierFree, false
	}
	return tier, true
}

// PriceForTier returns the configured price id for a paid tier, or "" when
// the tier has no price (free, employee, unknown).
func (t *PriceTable) PriceForTier(tier permissions.Tier) string {
	for priceID, mapped := range t.byPrice {
		if mapped == tier {
			return priceID
		}
	}
	return ""
}
