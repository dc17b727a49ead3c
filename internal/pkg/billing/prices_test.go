package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

func TestPriceTableResolution(t *testing.T) {
	table := NewPriceTable("price_p", "price_pr", "price_m")

	tier, ok := table.TierForPrice("price_pr")
	assert.True(t, ok)
	assert.Equal(t, permissions.TierPremium, tier)

	tier, ok = table.TierForPrice("price_nope")
	assert.False(t, ok)
	assert.Equal(t, permissions.TierFree, tier)

	assert.Equal(t, "price_m", table.PriceForTier(permissions.TierMentorship))
	assert.Equal(t, "", table.PriceForTier(permissions.TierFree))
	assert.Equal(t, "", table.PriceForTier(permissions.TierEmployee))
}

func TestPriceTableSkipsBlankConfig(t *testing.T) {
	table := NewPriceTable("price_p", "", "  ")

	_, ok := table.TierForPrice("")
	assert.False(t, ok)

	assert.Equal(t, "", table.PriceForTier(permissions.TierPremium))
	assert.Equal(t, "price_p", table.PriceForTier(permissions.TierPaid))
}
