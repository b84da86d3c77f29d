package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
)

func testAdmin() *domain.Admin {
	return &domain.Admin{ID: "admin-1", Name: "Console Admin", PhoneNumber: "9000000000", Role: domain.AdminRoleAdmin, Active: true}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "vendor-signup-service", 15)
	token, exp, err := tm.GenerateToken(testAdmin())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, domain.SubjectTypeAdmin, claims.SubjectType)
	assert.Equal(t, domain.AdminRoleAdmin, claims.Role)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", "vendor-signup-service", 15)
	token, _, err := tm.GenerateToken(testAdmin())
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", "vendor-signup-service", 15).ParseToken(token)
	assert.Error(t, err, "signature")

	_, err = NewTokenManager("secret", "someone-else", 15).ParseToken(token)
	assert.Error(t, err, "issuer")

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		SubjectType: "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "u-1",
			Issuer:  "vendor-signup-service",
		},
	})
	signed, err := other.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err, "subject type")
}

func TestParseTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", "vendor-signup-service", 1)
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken(testAdmin())
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)
	hashed, err := h.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hashed, "s3cret-pass"))
	assert.ErrorIs(t, h.Compare(hashed, "nope"), ErrInvalidCredentials)
}
