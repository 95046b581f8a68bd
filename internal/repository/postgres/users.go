package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/core/port"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	db      pgDatabase
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(db pgDatabase) *UserRepository {
	return &UserRepository{
		db:      db,
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		db:      r.db,
		exec:    tx,
		builder: r.builder,
	}
}

// CreateWithProfile inserts the user row and its profile row in one
// transaction. A duplicate email surfaces as repository.ErrConflict.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.UserProfile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stmt, args, err := r.builder.Insert("account.users").
		Columns("id", "email", "password_hash", "role_id", "created_at", "updated_at").
		Values(user.ID, user.Email, user.PasswordHash, user.RoleID, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	stmt, args, err = r.builder.Insert("account.user_profiles").
		Columns("user_id", "first_name", "last_name", "phone").
		Values(profile.UserID, profile.FirstName, optionalString(profile.LastName), optionalString(profile.Phone)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert profile sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user tx: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier, including role and permissions.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by email, including role and permissions.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.email": email})
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.Select(
		"u.id",
		"u.email",
		"u.password_hash",
		"u.role_id",
		"r.name",
		"r.description",
		"u.created_at",
		"u.updated_at",
	).
		From("account.users u").
		Join("account.roles r ON r.id = u.role_id").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		user     domain.User
		role     domain.Role
		roleDesc sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.RoleID,
		&role.Name,
		&roleDesc,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	role.ID = user.RoleID
	if roleDesc.Valid {
		value := roleDesc.String
		role.Description = &value
	}

	permissions, err := r.loadPermissions(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions
	user.Role = &role

	profile, err := r.loadProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Profile = profile

	return &user, nil
}

func (r *UserRepository) loadPermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("p.id", "p.action", "p.subject", "p.description").
		From("account.permissions p").
		Join("account.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.subject ASC", "p.action ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		var (
			permission domain.Permission
			desc       sql.NullString
		)
		if err := rows.Scan(&permission.ID, &permission.Action, &permission.Subject, &desc); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		if desc.Valid {
			value := desc.String
			permission.Description = &value
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

func (r *UserRepository) loadProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	stmt, args, err := r.builder.Select("user_id", "first_name", "last_name", "phone").
		From("account.user_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		profile  domain.UserProfile
		lastName sql.NullString
		phone    sql.NullString
	)

	if err := row.Scan(&profile.UserID, &profile.FirstName, &lastName, &phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if lastName.Valid {
		value := lastName.String
		profile.LastName = &value
	}
	if phone.Valid {
		value := phone.String
		profile.Phone = &value
	}

	return &profile, nil
}

// List returns all users with their role names, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(
		"u.id",
		"u.email",
		"u.role_id",
		"r.name",
		"u.created_at",
		"u.updated_at",
	).
		From("account.users u").
		Join("account.roles r ON r.id = u.role_id").
		OrderBy("u.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			user domain.User
			role domain.Role
		)
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.RoleID,
			&role.Name,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		role.ID = user.RoleID
		user.Role = &role
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// UpsertProfile inserts or updates the profile row for a user.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile domain.UserProfile) error {
	stmt, args, err := r.builder.Insert("account.user_profiles").
		Columns("user_id", "first_name", "last_name", "phone").
		Values(profile.UserID, profile.FirstName, optionalString(profile.LastName), optionalString(profile.Phone)).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// UpdateRole assigns a new role to a user.
func (r *UserRepository) UpdateRole(ctx context.Context, userID, roleID string) error {
	stmt, args, err := r.builder.Update("account.users").
		Set("role_id", roleID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
