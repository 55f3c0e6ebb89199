package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a sign-in failure. It never says which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailInUse signals a duplicate email registration.
	ErrEmailInUse = errors.New("email already in use")
	// ErrWeakPassword rejects passwords below the configured minimum length.
	ErrWeakPassword = errors.New("password is too weak")
	// ErrTokenInvalid means a supplied session token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
)

// User models the account persisted by the auth provider.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the signed-in session as seen by the client.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Token  string `json:"-"`
}

// Credentials captures raw credential input for sign-in and sign-up.
type Credentials struct {
	Email    string
	Password string
}
