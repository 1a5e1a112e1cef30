package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"scribbles/internal/clock"
	"scribbles/internal/model"
)

// TokenService issues and verifies the HS256 access tokens handed out after
// login or signup. The subject claim carries the username.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	clock  clock.Clock
}

func NewTokenService(secret string, maxAgeSeconds int, clk clock.Clock) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
		clock:  clk,
	}
}

// MaxAgeSeconds is reported to clients as expires_in.
func (s *TokenService) MaxAgeSeconds() int {
	return int(s.maxAge / time.Second)
}

// Issue signs an access token for username.
func (s *TokenService) Issue(username string) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenString and returns its subject.
func (s *TokenService) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrTokenExpired
		}
		return "", model.ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return "", model.ErrTokenInvalid
	}
	return claims.Subject, nil
}
