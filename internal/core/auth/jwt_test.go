package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	claims := &TokenClaims{
		UserID:   uuid.New().String(),
		TenantID: uuid.New().String(),
		Email:    "owner@practice.test",
		Role:     "admin",
	}

	token, expiresIn, err := svc.GenerateAccessToken(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(15*60), expiresIn)

	parsed, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, parsed.UserID)
	assert.Equal(t, claims.TenantID, parsed.TenantID)
	assert.Equal(t, claims.Email, parsed.Email)
	assert.Equal(t, claims.Role, parsed.Role)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a").GenerateAccessToken(&TokenClaims{UserID: "u"})
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, err := svc.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestJWTService_RefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, expiresAt, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	parsed, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_AccessTokenIsNotARefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, _, err := svc.GenerateAccessToken(&TokenClaims{UserID: "u"})
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a refresh token")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-passphrase", hash)

	assert.NoError(t, VerifyPassword(hash, "s3cret-passphrase"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}
