package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret")
	require.NoError(t, err)

	token, err := issuer.GenerateToken(7, "a@b.com", "ROLE_ADMIN")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Zero(t, claims.UserID)
}

func TestIssuer_UserIDClaim(t *testing.T) {
	issuer, err := NewIssuer("secret", WithUserIDClaim())
	require.NoError(t, err)

	token, err := issuer.GenerateToken(7, "a@b.com", "ROLE_USER")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	issuer, err := NewIssuer("secret", WithTTL(time.Minute))
	require.NoError(t, err)

	other, err := NewIssuer("other")
	require.NoError(t, err)
	foreign, err := other.GenerateToken(1, "a@b.com", "ROLE_USER")
	require.NoError(t, err)
	_, err = issuer.ValidateToken(foreign)
	assert.Error(t, err)

	token, err := issuer.GenerateToken(1, "a@b.com", "ROLE_USER")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = NewIssuer("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret12")
	require.NoError(t, err)
	assert.NotEqual(t, "secret12", hash)
	assert.NoError(t, VerifyPassword("secret12", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}
