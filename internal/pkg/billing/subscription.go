package billing

import (
	"context"
	"log"
	"time"

	"github.com/launchkit/launchkit/app/models"
	"github.com/launchkit/launchkit/internal/pkg/plans"
)

// ErrorType classifies why a present subscription is not usable.
type ErrorType string

const (
	ErrorTypeCanceled ErrorType = "CANCELED"
	ErrorTypeExpired  ErrorType = "EXPIRED"
	ErrorTypeGeneral  ErrorType = "GENERAL"
)

// User-facing subscription states derived from the resolver result.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusExpired  = "expired"
	StatusNone     = "none"
)

// SubscriptionDetails is a subscription row joined with its catalog plan.
// Plan is nil when no registry entry matches the row's product id.
type SubscriptionDetails struct {
	ID                 string      `json:"id"`
	ProductID          string      `json:"productId"`
	Status             string      `json:"status"`
	Amount             int64       `json:"amount"`
	Currency           string      `json:"currency"`
	RecurringInterval  string      `json:"recurringInterval"`
	CurrentPeriodStart time.Time   `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time   `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool        `json:"cancelAtPeriodEnd"`
	CanceledAt         *time.Time  `json:"canceledAt,omitempty"`
	Plan               *plans.Plan `json:"plan,omitempty"`
}

// SubscriptionDetailsResult is the resolver output. Exactly one of three
// shapes holds: no subscription at all, an active subscription with no
// error, or a present-but-unusable subscription with error and errorType.
type SubscriptionDetailsResult struct {
	HasSubscription bool                 `json:"hasSubscription"`
	Subscription    *SubscriptionDetails `json:"subscription,omitempty"`
	Error           string               `json:"error,omitempty"`
	ErrorType       ErrorType            `json:"errorType,omitempty"`
}

// GetSubscriptionDetails resolves the authoritative subscription for a user.
//
// Precedence: the most recently created row with status "active" wins. When
// no active row exists, the most recently created row overall is returned
// with an error classification where a canceled status always beats
// expiry-based classification, even if both apply. The resolver is the
// single source of truth for "what subscription matters right now"; the
// schema carries no current-subscription foreign key.
func (s *Service) GetSubscriptionDetails(ctx context.Context, userID uint) SubscriptionDetailsResult {
	_ = ctx
	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		log.Printf("billing: list subscriptions for user %d: %v", userID, err)
		return SubscriptionDetailsResult{
			HasSubscription: false,
			Error:           "Failed to load subscription details",
			ErrorType:       ErrorTypeGeneral,
		}
	}
	if len(subs) == 0 {
		return SubscriptionDetailsResult{HasSubscription: false}
	}

	if active := latestWithStatus(subs, models.SubscriptionStatusActive); active != nil {
		return SubscriptionDetailsResult{
			HasSubscription: true,
			Subscription:    s.details(active),
		}
	}

	latest := latestOf(subs)
	now := s.now()
	isExpired := latest.IsExpired(now)
	isCanceled := latest.IsCanceled()

	errMsg := "Subscription is not active"
	errType := ErrorTypeGeneral
	switch {
	case isCanceled:
		errMsg = "Subscription has been canceled"
		errType = ErrorTypeCanceled
	case isExpired:
		errMsg = "Subscription has expired"
		errType = ErrorTypeExpired
	}

	return SubscriptionDetailsResult{
		HasSubscription: true,
		Subscription:    s.details(latest),
		Error:           errMsg,
		ErrorType:       errType,
	}
}

// IsUserSubscribed reports whether the user's resolved subscription is active.
func (s *Service) IsUserSubscribed(ctx context.Context, userID uint) bool {
	result := s.GetSubscriptionDetails(ctx, userID)
	return result.HasSubscription &&
		result.Subscription != nil &&
		result.Subscription.Status == models.SubscriptionStatusActive
}

// HasAccessToProduct reports whether the user's active subscription is for
// the given provider product. Canceled or expired subscriptions never grant
// access, even when the product matches.
func (s *Service) HasAccessToProduct(ctx context.Context, userID uint, productID string) bool {
	result := s.GetSubscriptionDetails(ctx, userID)
	return result.HasSubscription &&
		result.Subscription != nil &&
		result.Subscription.Status == models.SubscriptionStatusActive &&
		result.Subscription.ProductID == productID
}

// HasAccessToAnyProduct checks the user's active subscription against a set
// of product ids and returns the matching product id when access is granted.
func (s *Service) HasAccessToAnyProduct(ctx context.Context, userID uint, productIDs []string) (bool, string) {
	result := s.GetSubscriptionDetails(ctx, userID)
	if !result.HasSubscription ||
		result.Subscription == nil ||
		result.Subscription.Status != models.SubscriptionStatusActive {
		return false, ""
	}
	for _, id := range productIDs {
		if result.Subscription.ProductID == id {
			return true, id
		}
	}
	return false, ""
}

// GetUserSubscriptionStatus maps the resolver result to one of
// active/canceled/expired/none using the same precedence as the resolver.
func (s *Service) GetUserSubscriptionStatus(ctx context.Context, userID uint) string {
	result := s.GetSubscriptionDetails(ctx, userID)
	if !result.HasSubscription {
		return StatusNone
	}
	if result.Subscription != nil && result.Subscription.Status == models.SubscriptionStatusActive {
		return StatusActive
	}
	switch result.ErrorType {
	case ErrorTypeCanceled:
		return StatusCanceled
	case ErrorTypeExpired:
		return StatusExpired
	default:
		return StatusNone
	}
}

// GetUserSubscriptions lists every subscription row for a user joined with
// plan details. No precedence is applied.
func (s *Service) GetUserSubscriptions(ctx context.Context, userID uint) ([]SubscriptionDetails, error) {
	_ = ctx
	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]SubscriptionDetails, 0, len(subs))
	for i := range subs {
		details = append(details, *s.details(&subs[i]))
	}
	return details, nil
}

func (s *Service) details(sub *models.Subscription) *SubscriptionDetails {
	d := &SubscriptionDetails{
		ID:                 sub.ID,
		ProductID:          sub.ProductID,
		Status:             sub.Status,
		Amount:             sub.Amount,
		Currency:           sub.Currency,
		RecurringInterval:  sub.RecurringInterval,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CanceledAt:         sub.CanceledAt,
	}
	if plan, ok := s.registry.ByProductID(sub.ProductID); ok {
		d.Plan = &plan
	}
	return d
}

func latestWithStatus(subs []models.Subscription, status string) *models.Subscription {
	var latest *models.Subscription
	for i := range subs {
		if subs[i].Status != status {
			continue
		}
		if latest == nil || subs[i].CreatedAt.After(latest.CreatedAt) {
			latest = &subs[i]
		}
	}
	return latest
}

func latestOf(subs []models.Subscription) *models.Subscription {
	latest := &subs[0]
	for i := range subs {
		if subs[i].CreatedAt.After(latest.CreatedAt) {
			latest = &subs[i]
		}
	}
	return latest
}
