package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgDatabase is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type pgDatabase interface {
	pgExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Roles         *RoleRepository
	RefreshTokens *RefreshTokenRepository
}

// NewRepositories wires all repositories backed by the provided database.
func NewRepositories(db pgDatabase) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Roles:         NewRoleRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
	}
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func optionalString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
