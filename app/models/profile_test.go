package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAPIKeyRoundTrip(t *testing.T) {
	p := &Profile{UserID: 1}
	assert.False(t, p.HasActiveAPIKey())

	raw, err := p.IssueAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "twd_"))
	assert.Equal(t, raw[:16], p.APIKeyPrefix)
	assert.Equal(t, HashAPIKey(raw), p.APIKeyHash)
	assert.True(t, p.HasActiveAPIKey())
	require.NotNil(t, p.APIKeyCreatedAt)
	assert.Nil(t, p.APIKeyRevokedAt)
	assert.Nil(t, p.APIKeyLastUsedAt)
}

func TestIssueAPIKeyRotates(t *testing.T) {
	p := &Profile{UserID: 1}

	first, err := p.IssueAPIKey()
	require.NoError(t, err)
	second, err := p.IssueAPIKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, HashAPIKey(second), p.APIKeyHash)
	assert.NotEqual(t, HashAPIKey(first), p.APIKeyHash)
}

func TestRevokeAPIKey(t *testing.T) {
	p := &Profile{UserID: 1}
	_, err := p.IssueAPIKey()
	require.NoError(t, err)

	p.RevokeAPIKey()

	assert.False(t, p.HasActiveAPIKey())
	assert.Empty(t, p.APIKeyHash)
	assert.Empty(t, p.APIKeyPrefix)
	require.NotNil(t, p.APIKeyRevokedAt)
	assert.Nil(t, p.APIKeyLastUsedAt)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("twd_abc"), HashAPIKey("  twd_abc \n"))
	assert.NotEqual(t, HashAPIKey("twd_abc"), HashAPIKey("twd_abd"))
}

func TestTouchAPIKeyUsage(t *testing.T) {
	p := &Profile{UserID: 1}
	p.TouchAPIKeyUsage()
	require.NotNil(t, p.APIKeyLastUsedAt)
}
