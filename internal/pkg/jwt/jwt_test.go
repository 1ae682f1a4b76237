package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "staff@example.com", "staff", 0, testSecret, 15)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.Equal(t, "staff", claims.Role)
	assert.Empty(t, claims.TokenID)
}

func TestViewerTokenCarriesStudentID(t *testing.T) {
	token, err := GenerateAccessToken(0, "student@example.com", "viewer", 7, testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(0), claims.UserID)
	assert.Equal(t, uint(7), claims.StudentID)
	assert.Equal(t, "viewer", claims.Role)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	first, err := GenerateRefreshToken(1, "a@example.com", "admin", 0, testSecret, 7)
	require.NoError(t, err)
	second, err := GenerateRefreshToken(1, "a@example.com", "admin", 0, testSecret, 7)
	require.NoError(t, err)

	// The embedded token ID makes two tokens for the same principal distinct
	assert.NotEqual(t, first, second)

	claims, err := ValidateRefreshToken(first, testSecret)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.TokenID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@example.com", "staff", 0, testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@example.com", "staff", 0, testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
