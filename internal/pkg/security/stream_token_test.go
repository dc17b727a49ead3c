package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamTokenRoundTrip(t *testing.T) {
	token, err := GenerateStreamToken(42, "premium", time.Minute, "s3cret")
	require.NoError(t, err)

	claims, err := VerifyStreamToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "premium", claims.Tier)
}

func TestStreamTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateStreamToken(1, "paid", time.Minute, "right")
	require.NoError(t, err)

	_, err = VerifyStreamToken(token, "wrong")
	assert.Error(t, err)
}

func TestStreamTokenRejectsExpired(t *testing.T) {
	token, err := GenerateStreamToken(1, "paid", -time.Minute, "s3cret")
	require.NoError(t, err)

	_, err = VerifyStreamToken(token, "s3cret")
	assert.Error(t, err)
}

func TestStreamTokenRejectsTampering(t *testing.T) {
	token, err := GenerateStreamToken(1, "free", time.Minute, "s3cret")
	require.NoError(t, err)

	_, err = VerifyStreamToken("x"+token, "s3cret")
	assert.Error(t, err)

	_, err = VerifyStreamToken("not-a-token", "s3cret")
	assert.Error(t, err)
}
