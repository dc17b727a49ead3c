package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
	assert.Equal(t, "TSLA", NormalizeSymbol("$tsla"))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "149.00 USD", FormatCents(14900, "usd"))
	assert.Equal(t, "0.99 EUR", FormatCents(99, "EUR"))
}

func TestEntryZone(t *testing.T) {
	assert.Equal(t, "101.50 - 104.00", EntryZone(101.5, 104))
	assert.Equal(t, "99.00", EntryZone(99, 99))
}
