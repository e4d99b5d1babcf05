package billing

import (
	"github.com/launchkit/launchkit/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	UpsertSubscription(sub *models.Subscription) error
	GetSubscriptionByID(id string) (*models.Subscription, error)
	ListSubscriptionsByUser(userID uint) ([]models.Subscription, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// UpsertSubscription writes the latest known state for a provider
// subscription id. On conflict every mutable column is overwritten with the
// new event's values; created_at keeps its insert-time value because the
// resolver orders rows by it. Writes race by arrival time, not by event
// timestamp, so an older event arriving late overwrites newer state.
// TODO: decide whether to reject writes older than the stored modified_at.
func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"product_id",
			"status",
			"amount",
			"currency",
			"recurring_interval",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"canceled_at",
			"started_at",
			"ends_at",
			"ended_at",
			"modified_at",
			"customer_id",
			"discount_id",
			"checkout_id",
			"customer_cancellation_reason",
			"customer_cancellation_comment",
			"metadata",
			"custom_field_data",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByID(id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}
