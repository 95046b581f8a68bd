package port

import (
	"context"
	"time"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

// RefreshTokenRepository persists at most one active refresh token per user.
type RefreshTokenRepository interface {
	// Replace atomically deletes any existing rows for the user and inserts
	// the new hash. Runs as a single transaction so no reader ever observes
	// two active rows for one user.
	Replace(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	FindActive(ctx context.Context, userID string) (*domain.RefreshToken, error)
	// RevokeAll deletes every row for the user. Revoking an already-revoked
	// session is not an error.
	RevokeAll(ctx context.Context, userID string) error
}
