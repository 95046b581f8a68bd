package port

import (
	"context"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	// CreateWithProfile inserts a user and its profile as one atomic unit.
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.UserProfile) error
	// GetByID loads a user including its role and the role's permissions.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail loads a user including its role and the role's permissions.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpsertProfile(ctx context.Context, profile domain.UserProfile) error
	UpdateRole(ctx context.Context, userID, roleID string) error
}
