package billing

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/launchkit/launchkit/app/models"
)

// ParseWebhookEnvelope decodes the outer {type, data} wrapper of a delivery.
func ParseWebhookEnvelope(body []byte) (*WebhookEnvelope, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, errors.New("webhook envelope missing event type")
	}
	return &env, nil
}

// ParseSubscriptionPayload decodes the subscription object of a recognized
// event. The provider-issued id is the only hard requirement; every other
// field is normalized later.
func ParseSubscriptionPayload(data json.RawMessage) (*SubscriptionPayload, error) {
	var payload SubscriptionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, errors.New("subscription payload missing id")
	}
	return &payload, nil
}

// Normalize maps the payload onto a store row.
//
// Timestamp policy: optional fields keep nil when absent; required fields
// (currentPeriodStart, currentPeriodEnd, startedAt, createdAt) fall back to
// the given wall-clock time so the store never holds an undefined required
// timestamp. A malformed payload can therefore be masked by current time,
// which is an accepted trade-off for webhook robustness.
func (p *SubscriptionPayload) Normalize(now time.Time) *models.Subscription {
	return &models.Subscription{
		ID:                          strings.TrimSpace(p.ID),
		UserID:                      ownerUserID(p.Customer.ExternalID),
		ProductID:                   strings.TrimSpace(p.ProductID),
		Status:                      strings.ToLower(strings.TrimSpace(p.Status)),
		Amount:                      p.Amount,
		Currency:                    strings.TrimSpace(p.Currency),
		RecurringInterval:           strings.TrimSpace(p.RecurringInterval),
		CurrentPeriodStart:          timeOr(p.CurrentPeriodStart, now),
		CurrentPeriodEnd:            timeOr(p.CurrentPeriodEnd, now),
		CancelAtPeriodEnd:           p.CancelAtPeriodEnd,
		CanceledAt:                  p.CanceledAt,
		StartedAt:                   timeOr(p.StartedAt, now),
		EndsAt:                      p.EndsAt,
		EndedAt:                     p.EndedAt,
		ModifiedAt:                  p.ModifiedAt,
		CustomerID:                  strings.TrimSpace(p.CustomerID),
		DiscountID:                  p.DiscountID,
		CheckoutID:                  strings.TrimSpace(p.CheckoutID),
		CustomerCancellationReason:  p.CustomerCancellationReason,
		CustomerCancellationComment: p.CustomerCancellationComment,
		Metadata:                    rawJSONText(p.Metadata),
		CustomFieldData:             rawJSONText(p.CustomFieldData),
		CreatedAt:                   timeOr(p.CreatedAt, now),
	}
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}

// rawJSONText keeps metadata blobs verbatim as serialized text. Absent or
// JSON-null blobs become nil, never an empty object.
func rawJSONText(raw json.RawMessage) *string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	s := string(raw)
	return &s
}

// ownerUserID resolves the provider's external customer reference to a local
// user id. A missing or non-numeric reference yields nil: the row is stored
// as an orphaned subscription rather than rejected.
func ownerUserID(externalID *string) *uint {
	if externalID == nil {
		return nil
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(*externalID), 10, 32)
	if err != nil || parsed == 0 {
		return nil
	}
	id := uint(parsed)
	return &id
}
