package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

var (
	// ErrInvalidAccessToken covers every access-token verification failure:
	// malformed, expired, or wrong signature. Callers never learn which.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrInvalidRefreshToken is the refresh-side equivalent.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// TokenClaims carries the minimal identity payload plus registered claims.
// Role and permission data never travel inside the token.
type TokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodecConfig configures the codec. Both secrets are mandatory and must
// differ so a token of one class can never verify against the other.
type TokenCodecConfig struct {
	Issuer          string
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenCodec signs and verifies HS256 token pairs with independent secret
// material per token class. Construct once at startup; absence of either
// secret is a process-level misconfiguration, not a request error.
type TokenCodec struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenCodec validates the configuration and returns a codec.
func NewTokenCodec(cfg TokenCodecConfig) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.AccessSecret) == "" {
		return nil, fmt.Errorf("token codec: access secret is required")
	}
	if strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, fmt.Errorf("token codec: refresh secret is required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("token codec: access and refresh secrets must differ")
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenCodec{
		issuer:        cfg.Issuer,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for expiry tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// RefreshTokenTTL exposes the configured refresh lifetime so callers can
// persist a matching expiry alongside the token hash.
func (c *TokenCodec) RefreshTokenTTL() time.Duration {
	return c.refreshTTL
}

// IssuePair signs an access and a refresh token for the payload.
func (c *TokenCodec) IssuePair(payload domain.TokenPayload) (domain.TokenPair, error) {
	if strings.TrimSpace(payload.UserID) == "" {
		return domain.TokenPair{}, fmt.Errorf("token codec: user id is required")
	}

	access, err := c.sign(payload, c.accessSecret, c.accessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := c.sign(payload, c.refreshSecret, c.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks the token against the access secret and returns its
// payload. All failure causes collapse into ErrInvalidAccessToken.
func (c *TokenCodec) VerifyAccess(token string) (domain.TokenPayload, error) {
	return c.verify(token, c.accessSecret, ErrInvalidAccessToken)
}

// VerifyRefresh checks the token against the refresh secret and returns its
// payload. All failure causes collapse into ErrInvalidRefreshToken.
func (c *TokenCodec) VerifyRefresh(token string) (domain.TokenPayload, error) {
	return c.verify(token, c.refreshSecret, ErrInvalidRefreshToken)
}

func (c *TokenCodec) sign(payload domain.TokenPayload, secret []byte, ttl time.Duration) (string, error) {
	now := c.now().UTC()

	claims := TokenClaims{
		UserID: payload.UserID,
		Email:  payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *TokenCodec) verify(token string, secret []byte, invalid error) (domain.TokenPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.TokenPayload{}, invalid
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || parsed == nil || !parsed.Valid {
		return domain.TokenPayload{}, invalid
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return domain.TokenPayload{}, invalid
	}

	return domain.TokenPayload{UserID: claims.UserID, Email: claims.Email}, nil
}
