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
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/logger"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/security"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/telemetry"
	"github.com/IsbatBInHossain/bookstore-cms/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// Callers must not reveal which of the two failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates a user with the email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrInvalidRefreshToken indicates the refresh token failed signature or expiry validation.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrRefreshTokenNotFound indicates no active session exists for the token's user.
	ErrRefreshTokenNotFound = errors.New("refresh token not found or invalidated")
	// ErrRefreshTokenMismatch indicates a valid token that does not match the
	// stored hash. The session is revoked before this error is returned.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
	// ErrInvalidAccessToken indicates the access token is malformed, expired,
	// or references a deleted user.
	ErrInvalidAccessToken = errors.New("invalid access token")
)

const (
	revokeReasonLogout     = "logout"
	revokeReasonTokenReuse = "refresh_token_reuse"
	revokeReasonExpired    = "refresh_token_expired"
)

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  *string
	Phone     *string
}

// AuthService coordinates registration, login, token rotation and revocation.
type AuthService struct {
	users             port.UserRepository
	roles             port.RoleRepository
	refreshTokens     port.RefreshTokenRepository
	hasher            *security.Hasher
	codec             *security.TokenCodec
	passwordValidator *security.PasswordValidator
	publisher         port.EventPublisher
	metrics           *telemetry.Provider
	log               *zap.Logger
	now               func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	roles port.RoleRepository,
	refreshTokens port.RefreshTokenRepository,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	validator *security.PasswordValidator,
	publisher port.EventPublisher,
	metrics *telemetry.Provider,
	log *zap.Logger,
) *AuthService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:             users,
		roles:             roles,
		refreshTokens:     refreshTokens,
		hasher:            hasher,
		codec:             codec,
		passwordValidator: validator,
		publisher:         publisher,
		metrics:           metrics,
		log:               log,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a user with the default CUSTOMER role and returns the
// sanitized record. No tokens are issued; the client logs in afterwards.
// Email is stored exactly as supplied; uniqueness and lookups are
// case-sensitive.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return domain.User{}, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return domain.User{}, fmt.Errorf("first name is required")
	}
	password := strings.TrimSpace(input.Password)
	if password == "" {
		return domain.User{}, fmt.Errorf("password is required")
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	customerRole, err := s.roles.GetByName(ctx, domain.RoleCustomer)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup default role: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		RoleID:       customerRole.ID,
		Role:         customerRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := domain.UserProfile{
		UserID:    user.ID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  input.LastName,
		Phone:     input.Phone,
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	user.Profile = &profile

	s.publishRegistered(ctx, user, now)

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return user.Sanitized(), nil
}

// Login verifies credentials and issues a fresh token pair, replacing any
// previously active refresh token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string, ip *string) (domain.User, domain.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ObserveLogin("failure")
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.metrics.ObserveLogin("failure")
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, user.ID, user.Email)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	now := s.now()
	s.publishLoggedIn(ctx, *user, ip, now)

	s.metrics.ObserveLogin("success")
	s.metrics.SessionOpened()

	s.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return user.Sanitized(), pair, nil
}

// Refresh rotates a refresh token. The presented token must both verify
// against the refresh secret and match the single stored hash for its user; a
// valid token that fails the stored-hash comparison is treated as evidence of
// theft and revokes the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	payload, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	stored, err := s.refreshTokens.FindActive(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenPair{}, ErrRefreshTokenNotFound
		}
		return domain.TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}

	now := s.now()
	if stored.IsExpired(now) {
		if err := s.revokeSession(ctx, payload.UserID, revokeReasonExpired, now); err != nil {
			return domain.TokenPair{}, err
		}
		return domain.TokenPair{}, ErrRefreshTokenNotFound
	}

	ok, err := s.hasher.Verify(stored.TokenHash, refreshToken)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("compare refresh token: %w", err)
	}
	if !ok {
		// The signature checked out but the token is not the active one, so
		// a previously rotated-out token is being replayed.
		s.log.Warn("refresh token reuse detected", zap.String("user_id", payload.UserID))
		if err := s.revokeSession(ctx, payload.UserID, revokeReasonTokenReuse, now); err != nil {
			return domain.TokenPair{}, err
		}
		return domain.TokenPair{}, ErrRefreshTokenMismatch
	}

	pair, err := s.issueSession(ctx, payload.UserID, payload.Email)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return pair, nil
}

// Logout revokes the session behind the presented refresh token. The token
// must carry a valid signature so its user claim can be trusted; logging out
// twice with the same token succeeds both times.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	payload, err := s.codec.VerifyRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return ErrInvalidRefreshToken
	}

	if err := s.revokeSession(ctx, payload.UserID, revokeReasonLogout, s.now()); err != nil {
		return err
	}

	s.metrics.SessionClosed()

	s.log.Info("user logged out", zap.String("user_id", payload.UserID))
	return nil
}

// Authenticate validates an access token and loads the current user with its
// role and permissions. Authorization data always comes from persistence, not
// from the token, so role changes apply on the next request.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	payload, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	user, err := s.users.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// issueSession mints a token pair and stores the refresh token hash, keeping
// at most one active refresh token per user.
func (s *AuthService) issueSession(ctx context.Context, userID, email string) (domain.TokenPair, error) {
	pair, err := s.codec.IssuePair(domain.TokenPayload{UserID: userID, Email: email})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue token pair: %w", err)
	}

	tokenHash, err := s.hasher.Hash(pair.RefreshToken)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("hash refresh token: %w", err)
	}

	expiresAt := s.now().Add(s.codec.RefreshTokenTTL())
	if err := s.refreshTokens.Replace(ctx, userID, tokenHash, expiresAt); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return pair, nil
}

func (s *AuthService) revokeSession(ctx context.Context, userID, reason string, at time.Time) error {
	if err := s.refreshTokens.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	if s.publisher != nil {
		event := domain.SessionRevokedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			RevokedAt: at,
			Reason:    reason,
		}
		if err := s.publisher.PublishSessionRevoked(ctx, event); err != nil {
			s.log.Warn("publish session revoked event failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *AuthService) publishRegistered(ctx context.Context, user domain.User, at time.Time) {
	if s.publisher == nil {
		return
	}

	roleName := string(domain.RoleCustomer)
	if user.Role != nil {
		roleName = string(user.Role.Name)
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		Role:         roleName,
		RegisteredAt: at,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.log.Warn("publish user registered event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func (s *AuthService) publishLoggedIn(ctx context.Context, user domain.User, ip *string, at time.Time) {
	if s.publisher == nil {
		return
	}

	event := domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Email:    user.Email,
		LoggedAt: at,
		IP:       ip,
	}
	if err := s.publisher.PublishUserLoggedIn(ctx, event); err != nil {
		s.log.Warn("publish user logged in event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
