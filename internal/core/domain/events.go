package domain

import "time"

// UserRegisteredEvent represents the payload for account.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Role         string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserLoggedInEvent represents the payload for account.user.logged_in messages.
type UserLoggedInEvent struct {
	EventID  string
	UserID   string
	Email    string
	LoggedAt time.Time
	IP       *string
	Metadata map[string]any
}

// UserRoleChangedEvent represents the payload for account.user.role.changed messages.
type UserRoleChangedEvent struct {
	EventID      string
	UserID       string
	PreviousRole string
	NewRole      string
	ChangedBy    string
	ChangedAt    time.Time
	Metadata     map[string]any
}

// SessionRevokedEvent represents the payload for account.session.revoked
// messages, emitted on logout and on refresh-token reuse detection.
type SessionRevokedEvent struct {
	EventID   string
	UserID    string
	RevokedAt time.Time
	Reason    string
	Metadata  map[string]any
}
