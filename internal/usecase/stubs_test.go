package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	uuid "github.com/google/uuid"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/security"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) CreateWithProfile(_ context.Context, user domain.User, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	user.Profile = &profile
	r.users[user.ID] = &user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *stubUserRepo) UpsertProfile(_ context.Context, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[profile.UserID]; ok {
		user.Profile = &profile
	}
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.RoleID = roleID
	return nil
}

type stubRoleRepo struct {
	roles map[domain.RoleName]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	repo := &stubRoleRepo{roles: make(map[domain.RoleName]*domain.Role)}
	for _, name := range []domain.RoleName{domain.RoleCustomer, domain.RoleManager, domain.RoleAdmin} {
		repo.roles[name] = &domain.Role{ID: uuid.NewString(), Name: name}
	}
	return repo
}

func (r *stubRoleRepo) GetByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (r *stubRoleRepo) UpsertRole(_ context.Context, role domain.Role) (string, error) {
	if existing, ok := r.roles[role.Name]; ok {
		existing.Description = role.Description
		return existing.ID, nil
	}
	copied := role
	r.roles[role.Name] = &copied
	return role.ID, nil
}

func (r *stubRoleRepo) UpsertPermission(_ context.Context, permission domain.Permission) (string, error) {
	return permission.ID, nil
}

func (r *stubRoleRepo) GrantPermission(_ context.Context, roleID, permissionID string) error {
	for _, role := range r.roles {
		if role.ID == roleID {
			role.Permissions = append(role.Permissions, domain.Permission{ID: permissionID})
		}
	}
	return nil
}

type stubTokenRepo struct {
	mu   sync.Mutex
	rows map[string]domain.RefreshToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{rows: make(map[string]domain.RefreshToken)}
}

func (r *stubTokenRepo) Replace(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[userID] = domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	return nil
}

func (r *stubTokenRepo) FindActive(_ context.Context, userID string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *stubTokenRepo) RevokeAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, userID)
	return nil
}

func (r *stubTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type stubEventPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *stubEventPublisher) record(eventType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *stubEventPublisher) PublishUserRegistered(_ context.Context, _ domain.UserRegisteredEvent) error {
	p.record("user.registered")
	return nil
}

func (p *stubEventPublisher) PublishUserLoggedIn(_ context.Context, _ domain.UserLoggedInEvent) error {
	p.record("user.logged_in")
	return nil
}

func (p *stubEventPublisher) PublishUserRoleChanged(_ context.Context, _ domain.UserRoleChangedEvent) error {
	p.record("user.role.changed")
	return nil
}

func (p *stubEventPublisher) PublishSessionRevoked(_ context.Context, _ domain.SessionRevokedEvent) error {
	p.record("session.revoked")
	return nil
}

func (p *stubEventPublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, recorded := range p.events {
		if recorded == eventType {
			return true
		}
	}
	return false
}

func testSecurity(t *testing.T) (*security.Hasher, *security.TokenCodec) {
	t.Helper()

	hasher, err := security.NewHasher(security.Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	codec, err := security.NewTokenCodec(security.TokenCodecConfig{
		Issuer:          "bookstore-account",
		AccessSecret:    "access-secret-for-tests",
		RefreshSecret:   "refresh-secret-for-tests",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	return hasher, codec
}
