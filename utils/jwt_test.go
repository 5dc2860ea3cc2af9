package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	token, err := GenerateToken("secret", 7, 2, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken("secret", token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.EqualValues(t, 2, claims.RoleID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", 7, 2, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken("secret", token)
	assert.Error(t, err)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", 7, 2, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("another-secret", token)
	assert.Error(t, err)
}

func TestTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken("", 7, 2, time.Hour)
	assert.Error(t, err)

	_, err = VerifyToken("", "whatever")
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
