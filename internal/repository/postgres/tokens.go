package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/core/port"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

// RefreshTokenRepository implements port.RefreshTokenRepository using
// PostgreSQL. The table holds at most one row per user; Replace enforces the
// invariant transactionally.
type RefreshTokenRepository struct {
	db      pgDatabase
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRefreshTokenRepository wires a PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db pgDatabase) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		db:      db,
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Replace deletes any existing rows for the user and inserts the new hash in
// one transaction. No reader ever observes two active rows for one user.
func (r *RefreshTokenRepository) Replace(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace token tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stmt, args, err := r.builder.Delete("account.refresh_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete refresh tokens sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}

	stmt, args, err = r.builder.Insert("account.refresh_tokens").
		Columns("id", "user_id", "token_hash", "created_at", "expires_at").
		Values(uuid.NewString(), userID, tokenHash, time.Now().UTC(), expiresAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace token tx: %w", err)
	}

	return nil
}

// FindActive returns the stored refresh token for a user, or
// repository.ErrNotFound when the user has no active session.
func (r *RefreshTokenRepository) FindActive(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.Select("id", "user_id", "token_hash", "created_at", "expires_at").
		From("account.refresh_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var token domain.RefreshToken
	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &token, nil
}

// RevokeAll deletes every refresh token row for a user. Deleting zero rows is
// not an error; logout is idempotent.
func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Delete("account.refresh_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke refresh tokens sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	return nil
}

var _ port.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
