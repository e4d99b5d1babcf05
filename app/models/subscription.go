package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusRevoked  = "revoked"
)

// Subscription mirrors the latest known provider state for one subscription.
// The primary key is the provider-issued id, so every write is an upsert and
// the table holds exactly one row per provider subscription, not a history.
//
// UserID is nullable: webhook payloads without a customer external reference
// still produce a row (an orphaned subscription) that can never be resolved
// to a local user.
type Subscription struct {
	ID                          string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID                      *uint      `gorm:"index" json:"user_id,omitempty"`
	ProductID                   string     `gorm:"type:varchar(191);not null;index" json:"product_id"`
	Status                      string     `gorm:"type:varchar(32);not null;index" json:"status"`
	Amount                      int64      `gorm:"not null;default:0" json:"amount"`
	Currency                    string     `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	RecurringInterval           string     `gorm:"type:varchar(16);not null;default:'month'" json:"recurring_interval"`
	CurrentPeriodStart          time.Time  `gorm:"type:timestamp;not null" json:"current_period_start"`
	CurrentPeriodEnd            time.Time  `gorm:"type:timestamp;not null" json:"current_period_end"`
	CancelAtPeriodEnd           bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt                  *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	StartedAt                   time.Time  `gorm:"type:timestamp;not null" json:"started_at"`
	EndsAt                      *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	EndedAt                     *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	ModifiedAt                  *time.Time `gorm:"type:timestamp;default:null" json:"modified_at,omitempty"`
	CustomerID                  string     `gorm:"type:varchar(191);not null;index" json:"customer_id"`
	DiscountID                  *string    `gorm:"type:varchar(191);default:null" json:"discount_id,omitempty"`
	CheckoutID                  string     `gorm:"type:varchar(191);not null;default:''" json:"checkout_id"`
	CustomerCancellationReason  *string    `gorm:"type:varchar(191);default:null" json:"customer_cancellation_reason,omitempty"`
	CustomerCancellationComment *string    `gorm:"type:text;default:null" json:"customer_cancellation_comment,omitempty"`
	Metadata                    *string    `gorm:"type:longtext" json:"metadata,omitempty"`
	CustomFieldData             *string    `gorm:"type:longtext" json:"custom_field_data,omitempty"`
	CreatedAt                   time.Time  `gorm:"type:timestamp;not null" json:"created_at"`
	UpdatedAt                   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the provider considers this subscription active.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// IsCanceled reports whether the provider marked this subscription canceled.
func (s *Subscription) IsCanceled() bool {
	return s.Status == SubscriptionStatusCanceled
}

// IsExpired reports whether the current billing period has ended.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now)
}
