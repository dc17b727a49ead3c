package marketdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tradewindhq/tradewind/internal/pkg/cache"
)

// quoteTTL bounds how stale a cached quote may get before the REST endpoint
// reports it missing.
const quoteTTL = 5 * time.Minute

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// CacheQuote stores the latest quote for a symbol in Redis. Plugged into the
// manager via WithQuoteHook; errors are swallowed since the feed must not
// stall on cache trouble.
func CacheQuote(q Quote) {
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	_ = cache.Set(quoteKey(q.Symbol), string(data), quoteTTL)
}

// GetCachedQuote returns the latest cached quote for a symbol.
func GetCachedQuote(symbol string) (*Quote, error) {
	raw, err := cache.Get(quoteKey(symbol))
	if err != nil {
		return nil, fmt.Errorf("no cached quote for %s: %w", symbol, err)
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, err
	}
	return &q, nil
}
