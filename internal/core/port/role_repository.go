package port

import (
	"context"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

// RoleRepository handles role and permission reference data.
type RoleRepository interface {
	// GetByName loads a role with its permission set.
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	UpsertRole(ctx context.Context, role domain.Role) (string, error)
	UpsertPermission(ctx context.Context, permission domain.Permission) (string, error)
	GrantPermission(ctx context.Context, roleID, permissionID string) error
}
