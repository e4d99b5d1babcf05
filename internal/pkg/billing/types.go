package billing

import (
	"encoding/json"
	"strings"
	"time"
)

// Provider webhook event types that carry a subscription object. Everything
// else delivered to the webhook endpoint is acknowledged and ignored.
const (
	EventSubscriptionCreated    = "subscription.created"
	EventSubscriptionActive     = "subscription.active"
	EventSubscriptionCanceled   = "subscription.canceled"
	EventSubscriptionRevoked    = "subscription.revoked"
	EventSubscriptionUncanceled = "subscription.uncanceled"
	EventSubscriptionUpdated    = "subscription.updated"
)

// IsSubscriptionEvent reports whether the event type is one of the
// recognized subscription lifecycle events.
func IsSubscriptionEvent(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case EventSubscriptionCreated,
		EventSubscriptionActive,
		EventSubscriptionCanceled,
		EventSubscriptionRevoked,
		EventSubscriptionUncanceled,
		EventSubscriptionUpdated:
		return true
	default:
		return false
	}
}

// WebhookEnvelope is the outer shape of every provider delivery.
type WebhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PayloadCustomer carries the provider's customer object as embedded in a
// subscription payload. ExternalID is the local user id the customer was
// registered with; it is absent when the customer was created outside the
// signup flow.
type PayloadCustomer struct {
	ID         string  `json:"id"`
	ExternalID *string `json:"externalId"`
}

// SubscriptionPayload is the provider subscription object as delivered in
// webhook events. Optional timestamps stay nil when the provider omits them;
// normalization decides what lands in the store.
type SubscriptionPayload struct {
	ID                          string          `json:"id"`
	CreatedAt                   *time.Time      `json:"createdAt"`
	ModifiedAt                  *time.Time      `json:"modifiedAt"`
	Amount                      int64           `json:"amount"`
	Currency                    string          `json:"currency"`
	RecurringInterval           string          `json:"recurringInterval"`
	Status                      string          `json:"status"`
	CurrentPeriodStart          *time.Time      `json:"currentPeriodStart"`
	CurrentPeriodEnd            *time.Time      `json:"currentPeriodEnd"`
	CancelAtPeriodEnd           bool            `json:"cancelAtPeriodEnd"`
	CanceledAt                  *time.Time      `json:"canceledAt"`
	StartedAt                   *time.Time      `json:"startedAt"`
	EndsAt                      *time.Time      `json:"endsAt"`
	EndedAt                     *time.Time      `json:"endedAt"`
	CustomerID                  string          `json:"customerId"`
	ProductID                   string          `json:"productId"`
	DiscountID                  *string         `json:"discountId"`
	CheckoutID                  string          `json:"checkoutId"`
	CustomerCancellationReason  *string         `json:"customerCancellationReason"`
	CustomerCancellationComment *string         `json:"customerCancellationComment"`
	Metadata                    json.RawMessage `json:"metadata"`
	CustomFieldData             json.RawMessage `json:"customFieldData"`
	Customer                    PayloadCustomer `json:"customer"`
}
