package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	ts := NewTokenService(testSecret, 30*time.Minute)

	token, issued, err := ts.GenerateToken(42, "editor")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := ts.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	ts := NewTokenService(testSecret, time.Minute)

	_, a, err := ts.GenerateToken(1, "user")
	require.NoError(t, err)
	_, b, err := ts.GenerateToken(1, "user")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGenerateRequiresUser(t *testing.T) {
	_, _, err := NewTokenService(testSecret, time.Minute).GenerateToken(0, "user")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	ts := NewTokenService(testSecret, time.Minute)
	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := ts.GenerateToken(1, "user")
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ID: "x"}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService(testSecret, time.Minute).ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestDefaultLifetime(t *testing.T) {
	assert.Equal(t, time.Hour, NewTokenService(testSecret, 0).Lifetime())
}
