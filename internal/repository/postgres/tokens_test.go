package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

func TestRefreshTokenRepository_Replace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRefreshTokenRepository(mock)

	expiresAt := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM account\.refresh_tokens`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO account\.refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", "hash-new", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Replace(context.Background(), "user-1", "hash-new", expiresAt); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshTokenRepository_ReplaceRollsBackOnInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRefreshTokenRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM account\.refresh_tokens`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO account\.refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", "hash-new", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = repo.Replace(context.Background(), "user-1", "hash-new", time.Now().Add(time.Hour))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshTokenRepository_FindActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRefreshTokenRepository(mock)

	createdAt := time.Now().UTC()
	expiresAt := createdAt.Add(7 * 24 * time.Hour)

	rows := pgxmock.NewRows([]string{"id", "user_id", "token_hash", "created_at", "expires_at"}).
		AddRow("token-1", "user-1", "hash-1", createdAt, expiresAt)

	mock.ExpectQuery(`SELECT .*FROM account\.refresh_tokens`).
		WithArgs("user-1").
		WillReturnRows(rows)

	token, err := repo.FindActive(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FindActive returned error: %v", err)
	}
	if token.TokenHash != "hash-1" {
		t.Fatalf("expected hash-1, got %s", token.TokenHash)
	}
	if !token.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expected expiry %v, got %v", expiresAt, token.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshTokenRepository_FindActiveNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRefreshTokenRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM account\.refresh_tokens`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "created_at", "expires_at"}))

	_, err = repo.FindActive(context.Background(), "user-2")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefreshTokenRepository_RevokeAllIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRefreshTokenRepository(mock)

	mock.ExpectExec(`DELETE FROM account\.refresh_tokens`).
		WithArgs("user-3").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.RevokeAll(context.Background(), "user-3"); err != nil {
		t.Fatalf("RevokeAll returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
