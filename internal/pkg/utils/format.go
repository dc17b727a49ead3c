package utils

import (
	"fmt"
	"strings"
)

// NormalizeSymbol uppercases a ticker symbol and strips surrounding noise.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	symbol = strings.TrimPrefix(symbol, "$")
	return strings.ToUpper(symbol)
}

// FormatPrice renders a price with two decimals for templates and mails.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// FormatCents renders an integer cent amount as a decimal currency string.
func FormatCents(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, strings.ToUpper(currency))
}

// FormatPercent renders a percentage with one decimal, e.g. "72.5%".
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// EntryZone renders the buy zone of an alert, collapsing equal bounds.
func EntryZone(low, high float64) string {
	if low == high {
		return FormatPrice(low)
	}
	return fmt.Sprintf("%s - %s", FormatPrice(low), FormatPrice(high))
}
