package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/launchkit/launchkit/internal/pkg/plans"
	"gorm.io/gorm"
)

// Service reconciles provider webhook events into the subscription store and
// answers subscription status questions for UI and access-control callers.
type Service struct {
	repo     Repository
	registry *plans.Registry
	now      func() time.Time
}

// NewService creates a billing service from an injected repository and plan
// registry.
func NewService(repo Repository, registry *plans.Registry) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a billing service from a GORM DB handle using the
// process-wide plan registry.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), plans.Default())
}

// HandleWebhookEvent consumes one provider event. Unrecognized event types
// are no-ops. Recognized events are parsed, normalized and upserted by the
// provider subscription id; redelivery of the same event writes the same
// values again and is therefore safe.
//
// The returned error is for observability only: the webhook endpoint
// acknowledges success regardless, so the provider does not retry.
func (s *Service) HandleWebhookEvent(ctx context.Context, eventType string, data json.RawMessage) error {
	_ = ctx
	if !IsSubscriptionEvent(eventType) {
		return nil
	}

	payload, err := ParseSubscriptionPayload(data)
	if err != nil {
		return fmt.Errorf("parse subscription payload: %w", err)
	}

	sub := payload.Normalize(s.now())
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}

// HandleWebhookBody consumes a raw delivery body: envelope parse plus event
// dispatch.
func (s *Service) HandleWebhookBody(ctx context.Context, body []byte) error {
	env, err := ParseWebhookEnvelope(body)
	if err != nil {
		return fmt.Errorf("parse webhook envelope: %w", err)
	}
	return s.HandleWebhookEvent(ctx, env.Type, env.Data)
}

// IsRecordNotFound reports whether err is the store's record-not-found error.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
