package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia123", hash)

	assert.True(t, CheckPassword(hash, "rahasia123"))
	assert.False(t, CheckPassword(hash, "salah"))
}

func TestGenerateAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(7, "budi@example.com", "member", testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "budi@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "a@b.c", "member", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "member", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    1,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestGenerateTokens_Pair(t *testing.T) {
	access, refresh, err := GenerateTokens(3, "c@d.e", "admin", testSecret, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)

	refreshClaims, err := ValidateToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refresh, err := GenerateTokens(3, "c@d.e", "admin", testSecret, testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refresh, testSecret, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)

	parsed, err := ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", parsed.TokenType)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	access, err := GenerateAccessToken(3, "c@d.e", "admin", testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(access, testSecret, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestTokenStructure(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", "member", testSecret)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
}
