package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/launchkit/launchkit/internal/pkg/billing"
	"github.com/launchkit/launchkit/internal/pkg/database"
	"github.com/launchkit/launchkit/internal/pkg/plans"
	"github.com/launchkit/launchkit/internal/pkg/usercontext"
)

func subscriptionService() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB())
}

// HandleGetSubscription returns the resolved subscription details for the
// authenticated user.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return c.JSON(subscriptionService().GetSubscriptionDetails(ctx, userCtx.UserID))
}

// HandleGetSubscriptionStatus returns just the status string for the
// authenticated user.
func HandleGetSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return c.JSON(fiber.Map{
		"status": subscriptionService().GetUserSubscriptionStatus(ctx, userCtx.UserID),
	})
}

// HandleGetSubscriptionAccess reports whether the authenticated user has an
// active subscription for the product given via ?product=, or for any product
// in the catalog when the parameter is omitted.
func HandleGetSubscriptionAccess(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := subscriptionService()
	if productID := strings.TrimSpace(c.Query("product")); productID != "" {
		return c.JSON(fiber.Map{
			"hasAccess": svc.HasAccessToProduct(ctx, userCtx.UserID, productID),
			"productId": productID,
		})
	}

	hasAccess, matched := svc.HasAccessToAnyProduct(ctx, userCtx.UserID, plans.Default().ProductIDs())
	return c.JSON(fiber.Map{
		"hasAccess": hasAccess,
		"productId": matched,
	})
}

// HandleListSubscriptions returns every subscription row owned by the
// authenticated user, newest first.
func HandleListSubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := subscriptionService().GetUserSubscriptions(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	return c.JSON(fiber.Map{"subscriptions": subs})
}
