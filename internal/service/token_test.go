package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribbles/internal/clock"
	"scribbles/internal/model"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	clk := clock.NewStubClock(testNow)
	svc := NewTokenService("secret", 3600, clk)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	username, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, 3600, svc.MaxAgeSeconds())
}

func TestTokenService_Expired(t *testing.T) {
	clk := clock.NewStubClock(testNow)
	svc := NewTokenService("secret", 60, clk)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	clk := clock.NewStubClock(testNow)
	svc := NewTokenService("secret", 60, clk)

	otherKey, err := NewTokenService("other", 60, clk).Issue("alice")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong key", otherKey},
		{"none algorithm", noneAlg},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token)
			assert.ErrorIs(t, err, model.ErrTokenInvalid)
		})
	}
}
