package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

type authFixture struct {
	service   *AuthService
	users     *stubUserRepo
	roles     *stubRoleRepo
	tokens    *stubTokenRepo
	publisher *stubEventPublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hasher, codec := testSecurity(t)
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	tokens := newStubTokenRepo()
	publisher := &stubEventPublisher{}

	service := NewAuthService(users, roles, tokens, hasher, codec, nil, publisher, nil, nil)

	return &authFixture{
		service:   service,
		users:     users,
		roles:     roles,
		tokens:    tokens,
		publisher: publisher,
	}
}

func (f *authFixture) register(t *testing.T, email string) domain.User {
	t.Helper()

	user, err := f.service.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "correct horse battery staple",
		FirstName: "Jane",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user
}

func TestRegisterAssignsCustomerRole(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "jane@example.com")

	if user.PasswordHash != "" {
		t.Fatal("registered user must not expose password hash")
	}
	if user.Role == nil || user.Role.Name != domain.RoleCustomer {
		t.Fatalf("expected CUSTOMER role, got %+v", user.Role)
	}

	stored, err := f.users.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct horse battery staple" {
		t.Fatal("password must be stored as a hash")
	}

	if !f.publisher.has("user.registered") {
		t.Fatal("expected user.registered event")
	}
}

func TestRegisterPreservesEmailCase(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "Jane@Example.COM")
	if user.Email != "Jane@Example.COM" {
		t.Fatalf("expected email stored as supplied, got %s", user.Email)
	}

	// A different-cased address is a distinct user, not a conflict.
	if _, err := f.service.Register(context.Background(), RegisterInput{
		Email:     "jane@example.com",
		Password:  "another strong passphrase",
		FirstName: "Janet",
	}); err != nil {
		t.Fatalf("Register with different-cased email returned error: %v", err)
	}
}

func TestLoginEmailIsCaseSensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Jane@Example.com")

	_, _, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for different-cased email, got %v", err)
	}

	if _, _, err := f.service.Login(context.Background(), "Jane@Example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("Login with exact email returned error: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "jane@example.com")

	_, err := f.service.Register(context.Background(), RegisterInput{
		Email:     "jane@example.com",
		Password:  "another strong passphrase",
		FirstName: "Janet",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), RegisterInput{
		Email:     "jane@example.com",
		Password:  "123",
		FirstName: "Jane",
	})
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, _, unknownErr := f.service.Login(context.Background(), "nobody@example.com", "whatever password", nil)
	_, _, wrongErr := f.service.Login(context.Background(), "jane@example.com", "wrong password here", nil)

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("unknown email and wrong password must be indistinguishable")
	}
}

func TestLoginIssuesPairAndStoresSingleToken(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "jane@example.com")

	user, pair, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("login response must not expose password hash")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}
	if f.tokens.count() != 1 {
		t.Fatalf("expected exactly one stored refresh token, got %d", f.tokens.count())
	}
	if !f.publisher.has("user.logged_in") {
		t.Fatal("expected user.logged_in event")
	}
}

func TestLoginTwiceReplacesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, first, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, _, err = f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if f.tokens.count() != 1 {
		t.Fatalf("expected exactly one stored refresh token, got %d", f.tokens.count())
	}

	// The first session's refresh token was rotated out by the second login.
	_, err = f.service.Refresh(context.Background(), first.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenMismatch) {
		t.Fatalf("expected ErrRefreshTokenMismatch, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, original, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	rotated, err := f.service.Refresh(context.Background(), original.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if rotated.RefreshToken == original.RefreshToken {
		t.Fatal("rotation must issue a different refresh token")
	}
	if f.tokens.count() != 1 {
		t.Fatalf("expected exactly one stored refresh token, got %d", f.tokens.count())
	}

	// The new token works, the old one no longer does.
	if _, err := f.service.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token should refresh: %v", err)
	}
}

func TestRefreshReuseRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, original, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	rotated, err := f.service.Refresh(context.Background(), original.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	// Replaying the rotated-out token is a theft signal.
	if _, err := f.service.Refresh(context.Background(), original.RefreshToken); !errors.Is(err, ErrRefreshTokenMismatch) {
		t.Fatalf("expected ErrRefreshTokenMismatch, got %v", err)
	}
	if !f.publisher.has("session.revoked") {
		t.Fatal("expected session.revoked event")
	}
	if f.tokens.count() != 0 {
		t.Fatal("expected session revoked after reuse")
	}

	// The whole session is dead, including the latest token.
	if _, err := f.service.Refresh(context.Background(), rotated.RefreshToken); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.service.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, pair, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.service.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if f.tokens.count() != 0 {
		t.Fatal("expected refresh token removed on logout")
	}

	// Second logout with nothing to revoke still succeeds.
	if err := f.service.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.service.Logout(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuthenticateLoadsCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "jane@example.com")

	_, pair, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, err := f.service.Authenticate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("authenticated user must not expose password hash")
	}
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jane@example.com")

	_, pair, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// A refresh token must never pass as an access credential.
	if _, err := f.service.Authenticate(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "jane@example.com")

	_, pair, err := f.service.Login(context.Background(), "jane@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	f.users.mu.Lock()
	delete(f.users.users, registered.ID)
	f.users.mu.Unlock()

	if _, err := f.service.Authenticate(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}
