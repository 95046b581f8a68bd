package domain

import "time"

// TokenPayload is the minimal claim set embedded in access and refresh
// tokens. Authorization data is deliberately absent; role and permissions are
// re-fetched from persistence on every authenticated request.
type TokenPayload struct {
	UserID string
	Email  string
}

// TokenPair bundles the two credentials returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken represents the persisted refresh token for a user. Only the
// Argon2 hash of the token string is stored, never the raw token. The store
// keeps at most one row per user at any time.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the token has elapsed its validity window.
func (t RefreshToken) IsExpired(at time.Time) bool {
	return !t.ExpiresAt.After(at)
}
