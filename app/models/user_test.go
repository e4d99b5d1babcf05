package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("tester", "tester@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "tester", user.Name)
	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("ab", "tester@example.com", "secret123")
	assert.Error(t, err, "name below minimum length must be rejected")

	_, err = CreateUser("tester", "not-an-email", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("tester", "tester@example.com", "short")
	assert.Error(t, err, "password below minimum length must be rejected")
}

func TestSetPassword(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("newsecret"))
	assert.True(t, user.CheckPassword("newsecret"))
}

func TestSignupRole(t *testing.T) {
	assert.Equal(t, ROLE_SUPER_ADMIN, SignupRole(1))
	assert.Equal(t, ROLE_USER, SignupRole(2))
	assert.Equal(t, ROLE_USER, SignupRole(42))
}

func TestIsSuperAdmin(t *testing.T) {
	assert.True(t, (&User{Role: ROLE_SUPER_ADMIN}).IsSuperAdmin())
	assert.False(t, (&User{Role: ROLE_USER}).IsSuperAdmin())
}

func TestSubscriptionStateHelpers(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	active := &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: now.Add(24 * time.Hour)}
	assert.True(t, active.IsActive())
	assert.False(t, active.IsCanceled())
	assert.False(t, active.IsExpired(now))

	canceled := &Subscription{Status: SubscriptionStatusCanceled, CurrentPeriodEnd: now.Add(-time.Hour)}
	assert.True(t, canceled.IsCanceled())
	assert.True(t, canceled.IsExpired(now))
}
