package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTMLAndTruncate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{
			name:      "plain text unchanged",
			input:     "NVDA approaching the buy zone",
			maxLength: 100,
			expected:  "NVDA approaching the buy zone",
		},
		{
			name:      "tags removed",
			input:     "<p>Entry between <strong>120</strong> and 125</p>",
			maxLength: 100,
			expected:  "Entry between 120 and 125",
		},
		{
			name:      "truncated to max length",
			input:     "abcdefghij",
			maxLength: 4,
			expected:  "abcd",
		},
		{
			name:      "empty input",
			input:     "",
			maxLength: 10,
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripHTMLAndTruncate(tt.input, tt.maxLength))
		})
	}
}

func TestFindAddressInXFF(t *testing.T) {
	xff := "203.0.113.7, 2001:db8::1, 10.0.0.1"

	assert.Equal(t, "203.0.113.7", findAddressInXFF(xff, false))
	assert.Equal(t, "2001:db8::1", findAddressInXFF(xff, true))
	assert.Equal(t, "", findAddressInXFF("203.0.113.7", true))
	assert.Equal(t, "", findAddressInXFF("", false))
}

func TestSlugify(t *testing.T) {
	never := func(string) (bool, error) { return false, nil }

	assert.Equal(t, "market-recap-august", slugify("Market Recap: August!", never))
	assert.Equal(t, "post", slugify("!!!", never))

	// First candidate taken, second free
	calls := 0
	assert.Equal(t, "market-recap-2", slugify("Market Recap", func(slug string) (bool, error) {
		calls++
		return slug == "market-recap", nil
	}))
	assert.Equal(t, 2, calls)
}
