package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, typically in development.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs account.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, map[string]any{
		"email": event.Email,
		"role":  event.Role,
	})
	return nil
}

// PublishUserLoggedIn logs account.user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logEvent("user.logged_in", event.UserID, event.LoggedAt, map[string]any{
		"email": event.Email,
	})
	return nil
}

// PublishUserRoleChanged logs account.user.role.changed events.
func (p *StubPublisher) PublishUserRoleChanged(_ context.Context, event domain.UserRoleChangedEvent) error {
	p.logEvent("user.role.changed", event.UserID, event.ChangedAt, map[string]any{
		"previous_role": event.PreviousRole,
		"new_role":      event.NewRole,
		"changed_by":    event.ChangedBy,
	})
	return nil
}

// PublishSessionRevoked logs account.session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	p.logEvent("session.revoked", event.UserID, event.RevokedAt, map[string]any{
		"reason": event.Reason,
	})
	return nil
}
