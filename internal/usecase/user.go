package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/core/port"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

var (
	// ErrUserNotFound indicates the target user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the requested role is not part of the seeded enum.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfRoleChange indicates an administrator attempted to change their own role.
	ErrSelfRoleChange = errors.New("changing own role is not allowed")
)

// ProfileUpdateInput carries the mutable profile fields.
type ProfileUpdateInput struct {
	FirstName string
	LastName  *string
	Phone     *string
}

// UserService handles profile reads and administrative user management.
type UserService struct {
	users     port.UserRepository
	roles     port.RoleRepository
	publisher port.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(users port.UserRepository, roles port.RoleRepository, publisher port.EventPublisher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		users:     users,
		roles:     roles,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Profile returns the sanitized user record with role and permissions.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfile replaces the caller's profile fields and returns the updated
// record. Email, password and role are not touched here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, fmt.Errorf("first name is required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	profile := domain.UserProfile{
		UserID:    userID,
		FirstName: firstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}

	if err := s.users.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.Profile(ctx, userID)
}

// List returns all users with their roles, sanitized.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sanitized := make([]domain.User, 0, len(users))
	for _, user := range users {
		sanitized = append(sanitized, user.Sanitized())
	}

	return sanitized, nil
}

// UpdateRole assigns a new role to the target user. Administrators cannot
// change their own role, which keeps at least one working admin around.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID string, roleName domain.RoleName) (*domain.User, error) {
	if !roleName.Valid() {
		return nil, ErrInvalidRole
	}
	if actorID == targetID {
		return nil, ErrSelfRoleChange
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load target user: %w", err)
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRole
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	if err := s.users.UpdateRole(ctx, targetID, role.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	previousRole := ""
	if target.Role != nil {
		previousRole = string(target.Role.Name)
	}

	s.publishRoleChanged(ctx, targetID, actorID, previousRole, string(roleName))

	s.log.Info("user role changed",
		zap.String("user_id", targetID),
		zap.String("changed_by", actorID),
		zap.String("new_role", string(roleName)),
	)

	return s.Profile(ctx, targetID)
}

func (s *UserService) publishRoleChanged(ctx context.Context, userID, actorID, previous, next string) {
	if s.publisher == nil {
		return
	}

	event := domain.UserRoleChangedEvent{
		EventID:      uuid.NewString(),
		UserID:       userID,
		PreviousRole: previous,
		NewRole:      next,
		ChangedBy:    actorID,
		ChangedAt:    s.now(),
	}
	if err := s.publisher.PublishUserRoleChanged(ctx, event); err != nil {
		s.log.Warn("publish role changed event failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
