package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/launchkit/launchkit/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRef(id uint) *uint { return &id }

func storedSubscription(id string, userID uint, status string, createdAt, periodEnd time.Time) models.Subscription {
	return models.Subscription{
		ID:                 id,
		UserID:             userRef(userID),
		ProductID:          "prod_starter",
		Status:             status,
		Amount:             1000,
		Currency:           "USD",
		RecurringInterval:  "month",
		CurrentPeriodStart: createdAt,
		CurrentPeriodEnd:   periodEnd,
		StartedAt:          createdAt,
		CustomerID:         "cus_1",
		CreatedAt:          createdAt,
	}
}

func TestGetSubscriptionDetails_NoRows(t *testing.T) {
	svc := testService(newFakeRepository())

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	assert.False(t, result.HasSubscription)
	assert.Nil(t, result.Subscription)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.ErrorType)
}

func TestGetSubscriptionDetails_ActiveBeatsNewerCanceled(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	t1 := now.AddDate(0, -2, 0)
	t2 := now.AddDate(0, -1, 0)
	repo.rows["sub_old_active"] = storedSubscription("sub_old_active", 7, models.SubscriptionStatusActive, t1, now.AddDate(0, 1, 0))
	repo.rows["sub_new_canceled"] = storedSubscription("sub_new_canceled", 7, models.SubscriptionStatusCanceled, t2, now.AddDate(0, 1, 0))

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	require.True(t, result.HasSubscription)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "sub_old_active", result.Subscription.ID)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.ErrorType)
}

func TestGetSubscriptionDetails_MostRecentActiveWins(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_a"] = storedSubscription("sub_a", 7, models.SubscriptionStatusActive, now.AddDate(0, -3, 0), now.AddDate(0, 1, 0))
	repo.rows["sub_b"] = storedSubscription("sub_b", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	require.NotNil(t, result.Subscription)
	assert.Equal(t, "sub_b", result.Subscription.ID)
}

func TestGetSubscriptionDetails_CanceledBeatsExpired(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	// Canceled and past its period end: canceled classification must win.
	sub := storedSubscription("sub_c", 7, models.SubscriptionStatusCanceled, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))
	canceledAt := now.AddDate(0, -1, -3)
	sub.CanceledAt = &canceledAt
	repo.rows["sub_c"] = sub

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	require.True(t, result.HasSubscription)
	assert.Equal(t, ErrorTypeCanceled, result.ErrorType)
	assert.Equal(t, "Subscription has been canceled", result.Error)
}

func TestGetSubscriptionDetails_Expired(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_e"] = storedSubscription("sub_e", 7, "revoked", now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	require.True(t, result.HasSubscription)
	assert.Equal(t, ErrorTypeExpired, result.ErrorType)
}

func TestGetSubscriptionDetails_GeneralWhenNeitherCanceledNorExpired(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_g"] = storedSubscription("sub_g", 7, "past_due", now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	require.True(t, result.HasSubscription)
	assert.Equal(t, ErrorTypeGeneral, result.ErrorType)
	assert.Equal(t, "Subscription is not active", result.Error)
}

func TestGetSubscriptionDetails_StoreError(t *testing.T) {
	repo := newFakeRepository()
	repo.listErr = errors.New("timeout")
	svc := testService(repo)

	result := svc.GetSubscriptionDetails(context.Background(), 7)

	assert.False(t, result.HasSubscription)
	assert.Equal(t, ErrorTypeGeneral, result.ErrorType)
	assert.NotEmpty(t, result.Error)
}

func TestGetSubscriptionDetails_JoinsPlan(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_p"] = storedSubscription("sub_p", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	unknown := storedSubscription("sub_u", 9, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	unknown.ProductID = "prod_unknown"
	repo.rows["sub_u"] = unknown

	withPlan := svc.GetSubscriptionDetails(context.Background(), 7)
	require.NotNil(t, withPlan.Subscription)
	require.NotNil(t, withPlan.Subscription.Plan)
	assert.Equal(t, "starter", withPlan.Subscription.Plan.ID)

	withoutPlan := svc.GetSubscriptionDetails(context.Background(), 9)
	require.NotNil(t, withoutPlan.Subscription)
	assert.Nil(t, withoutPlan.Subscription.Plan)
}

func TestHasAccessToProduct(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_1"] = storedSubscription("sub_1", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	repo.rows["sub_2"] = storedSubscription("sub_2", 8, models.SubscriptionStatusCanceled, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))

	assert.True(t, svc.HasAccessToProduct(context.Background(), 7, "prod_starter"))
	assert.False(t, svc.HasAccessToProduct(context.Background(), 7, "prod_pro"))
	// Matching product never grants access through a canceled subscription.
	assert.False(t, svc.HasAccessToProduct(context.Background(), 8, "prod_starter"))
	assert.False(t, svc.HasAccessToProduct(context.Background(), 99, "prod_starter"))
}

func TestHasAccessToAnyProduct(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_1"] = storedSubscription("sub_1", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))

	ok, product := svc.HasAccessToAnyProduct(context.Background(), 7, []string{"prod_pro", "prod_starter"})
	assert.True(t, ok)
	assert.Equal(t, "prod_starter", product)

	ok, product = svc.HasAccessToAnyProduct(context.Background(), 7, []string{"prod_pro"})
	assert.False(t, ok)
	assert.Empty(t, product)
}

func TestGetUserSubscriptionStatus(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	assert.Equal(t, StatusNone, svc.GetUserSubscriptionStatus(context.Background(), 7))

	repo.rows["sub_1"] = storedSubscription("sub_1", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	assert.Equal(t, StatusActive, svc.GetUserSubscriptionStatus(context.Background(), 7))

	canceled := storedSubscription("sub_2", 8, models.SubscriptionStatusCanceled, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	repo.rows["sub_2"] = canceled
	assert.Equal(t, StatusCanceled, svc.GetUserSubscriptionStatus(context.Background(), 8))

	expired := storedSubscription("sub_3", 9, "revoked", now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))
	repo.rows["sub_3"] = expired
	assert.Equal(t, StatusExpired, svc.GetUserSubscriptionStatus(context.Background(), 9))
}

func TestGetUserSubscriptions_NoPrecedence(t *testing.T) {
	repo := newFakeRepository()
	svc := testService(repo)
	now := svc.now()

	repo.rows["sub_1"] = storedSubscription("sub_1", 7, models.SubscriptionStatusActive, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	repo.rows["sub_2"] = storedSubscription("sub_2", 7, models.SubscriptionStatusCanceled, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))

	subs, err := svc.GetUserSubscriptions(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
