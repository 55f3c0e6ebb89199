package auth

import "context"

// SessionListener receives the current identity, or nil when signed out.
type SessionListener func(identity *Identity)

// Provider is the asynchronous session source consumed by the client.
type Provider interface {
	// OnSessionChange registers fn for every session transition and returns its unsubscribe func.
	OnSessionChange(fn SessionListener) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
}

// UserRepository defines persistence operations for provider accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
