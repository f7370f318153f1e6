package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("access", "refresh", time.Minute, time.Hour)

	token, err := GenerateAccessToken(42, "hospital")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "hospital", claims.Role)
}

func TestAccessTokenRejectsOtherSecret(t *testing.T) {
	InitJWT("one", "refresh", time.Minute, time.Hour)
	token, err := GenerateAccessToken(1, "user")
	require.NoError(t, err)

	InitJWT("two", "refresh", time.Minute, time.Hour)
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestResetTokenIsNotAnAccessToken(t *testing.T) {
	InitJWT("shared", "refresh", time.Minute, time.Hour)
	InitResetToken("shared", time.Minute)

	access, err := GenerateAccessToken(7, "user")
	require.NoError(t, err)
	_, err = ValidateResetToken(access)
	assert.Error(t, err)

	reset, err := GenerateResetToken(7, "$2a$10$hash")
	require.NoError(t, err)
	claims, err := ValidateResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, PasswordStamp("$2a$10$hash"), claims.Stamp)
	assert.NotEqual(t, PasswordStamp("$2a$10$other"), claims.Stamp)
}

func TestExpiredResetToken(t *testing.T) {
	InitResetToken("reset", -time.Minute)
	token, err := GenerateResetToken(3, "")
	require.NoError(t, err)

	_, err = ValidateResetToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "s3cret-pass"))
	assert.False(t, ComparePassword(hash, "wrong"))
}

func TestComparePasswordMalformedHash(t *testing.T) {
	assert.False(t, ComparePassword("not-a-bcrypt-hash", "anything"))
	assert.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
