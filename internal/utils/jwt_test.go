package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := NewRefreshToken("refresh-secret", 42, 7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	uid, err := ParseRefreshToken("refresh-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestParseRefreshTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewRefreshToken("refresh-secret", 42, 7)
	require.NoError(t, err)

	_, err = ParseRefreshToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRefreshTokenRejectsAccessToken(t *testing.T) {
	// Access tokens lack the typ claim, so they must never pass as refresh
	// tokens even when both secrets happen to match.
	access, err := NewAccessToken("same-secret", 42, "alice", "engineer", 30)
	require.NoError(t, err)

	_, err = ParseRefreshToken("same-secret", access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRefreshTokenGarbage(t *testing.T) {
	_, err := ParseRefreshToken("secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
