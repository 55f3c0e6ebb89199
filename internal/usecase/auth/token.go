package auth

// TokenManager abstracts session token issuance and verification.
type TokenManager interface {
	Generate(userID string) (string, error)
	Validate(token string) (string, error)
}

// SessionCache persists the session token between client runs.
type SessionCache interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
