package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"scribbles/internal/config"
)

// PasswordHasher decides how passwords are stored and compared.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, given string) bool
}

// PlainPasswords stores passwords as given and compares them exactly.
type PlainPasswords struct{}

func (PlainPasswords) Hash(password string) (string, error) {
	return password, nil
}

func (PlainPasswords) Matches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptPasswords) Matches(stored, given string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
}

// NewPasswordHasher returns the hasher for a PASSWORD_MODE value.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case "", config.PasswordPlain:
		return PlainPasswords{}, nil
	case config.PasswordBcrypt:
		return BcryptPasswords{}, nil
	}
	return nil, fmt.Errorf("unknown password mode %q", mode)
}
