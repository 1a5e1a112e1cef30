package model

import "errors"

// Account is a registered user as persisted under the accounts key.
// The password is stored exactly as the active password mode produced it.
type Account struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
}

// Session is the public view of the logged-in account.
type Session struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
}

// Session strips the password.
func (a Account) Session() Session {
	return Session{
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Bio:         a.Bio,
		Avatar:      a.Avatar,
	}
}

// Author returns the snapshot copied into posts and comments.
func (s Session) Author() Author {
	return Author{
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Avatar:      s.Avatar,
	}
}

// SignupRequest represents the data needed to register a new account
type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned after login or signup.
type SessionResponse struct {
	Session     Session `json:"session"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeNoSession    = "NO_SESSION"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create an account with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated is returned by mutations attempted without an active session
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
