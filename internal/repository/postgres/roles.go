package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/core/port"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

// RoleRepository implements port.RoleRepository using PostgreSQL.
type RoleRepository struct {
	db      pgDatabase
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository wires a PostgreSQL-backed role repository.
func NewRoleRepository(db pgDatabase) *RoleRepository {
	return &RoleRepository{
		db:      db,
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByName retrieves a role with its permission set.
func (r *RoleRepository) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name", "description").
		From("account.roles").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		role domain.Role
		desc sql.NullString
	)

	if err := row.Scan(&role.ID, &role.Name, &desc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	if desc.Valid {
		value := desc.String
		role.Description = &value
	}

	permissions, err := r.loadPermissions(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions

	return &role, nil
}

func (r *RoleRepository) loadPermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("p.id", "p.action", "p.subject", "p.description").
		From("account.permissions p").
		Join("account.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.subject ASC", "p.action ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		var (
			permission domain.Permission
			desc       sql.NullString
		)
		if err := rows.Scan(&permission.ID, &permission.Action, &permission.Subject, &desc); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		if desc.Valid {
			value := desc.String
			permission.Description = &value
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return permissions, nil
}

// List returns every seeded role with its permissions.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name", "description").
		From("account.roles").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var (
			role domain.Role
			desc sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.Name, &desc); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if desc.Valid {
			value := desc.String
			role.Description = &value
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	for i := range roles {
		permissions, err := r.loadPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = permissions
	}

	return roles, nil
}

// UpsertRole inserts a role if missing and returns its identifier. Used by
// the seeder; runtime code treats roles as read-only reference data.
func (r *RoleRepository) UpsertRole(ctx context.Context, role domain.Role) (string, error) {
	stmt, args, err := r.builder.Insert("account.roles").
		Columns("id", "name", "description").
		Values(role.ID, role.Name, optionalString(role.Description)).
		Suffix(`ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id`).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build upsert role sql: %w", err)
	}

	var id string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert role: %w", err)
	}

	return id, nil
}

// UpsertPermission inserts a permission if missing and returns its identifier.
func (r *RoleRepository) UpsertPermission(ctx context.Context, permission domain.Permission) (string, error) {
	stmt, args, err := r.builder.Insert("account.permissions").
		Columns("id", "action", "subject", "description").
		Values(permission.ID, permission.Action, permission.Subject, optionalString(permission.Description)).
		Suffix(`ON CONFLICT (action, subject) DO UPDATE SET description = EXCLUDED.description
			RETURNING id`).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build upsert permission sql: %w", err)
	}

	var id string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert permission: %w", err)
	}

	return id, nil
}

// GrantPermission links a permission to a role. Granting twice is a no-op.
func (r *RoleRepository) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	stmt, args, err := r.builder.Insert("account.role_permissions").
		Columns("role_id", "permission_id").
		Values(roleID, permissionID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build grant permission sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}

	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
