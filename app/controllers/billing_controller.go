package controllers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/launchkit/launchkit/internal/pkg/billing"
	"github.com/launchkit/launchkit/internal/pkg/database"
	"github.com/launchkit/launchkit/internal/pkg/env"
	"github.com/launchkit/launchkit/internal/pkg/plans"
	"github.com/launchkit/launchkit/internal/pkg/usercontext"
)

// HandlePolarWebhook receives billing events, verifies their signature and
// hands them to the reconciler. Reconcile failures are logged but still
// acknowledged so the provider does not retry a payload that will never apply.
func HandlePolarWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Webhook-Signature"))
	secret := env.GetEnv("POLAR_WEBHOOK_SECRET", "")

	if !billing.VerifyWebhookSignature(rawBody, signature, secret) {
		ipv4, ipv6 := GetClientIP(c)
		log.Printf("rejected webhook with invalid signature from %s %s", ipv4, ipv6)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	envelope, err := billing.ParseWebhookEnvelope(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := svc.HandleWebhookEvent(ctx, envelope.Type, envelope.Data); err != nil {
		log.Printf("webhook reconcile failed for %s: %v", envelope.Type, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleBillingCheckout redirects a logged-in user to the hosted checkout for
// the plan named by the :slug parameter.
func HandleBillingCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	slug := strings.TrimSpace(c.Params("slug"))
	plan, ok := plans.Default().BySlug(slug)
	if !ok {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Unknown plan: " + slug}).Redirect("/pricing")
	}

	client := billing.NewPolarClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	url, err := client.CreateCheckout(ctx, plan.ProductID, strconv.FormatUint(uint64(userCtx.UserID), 10))
	if err != nil {
		log.Printf("checkout creation failed for plan %s: %v", plan.ID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Checkout could not be started"}).Redirect("/pricing")
	}

	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleBillingPortal redirects a logged-in user to the provider's customer
// portal where they can manage or cancel their subscription.
func HandleBillingPortal(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	client := billing.NewPolarClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	url, err := client.CustomerPortalURL(ctx, strconv.FormatUint(uint64(userCtx.UserID), 10))
	if err != nil {
		log.Printf("portal session failed for user %d: %v", userCtx.UserID, err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Customer portal is unavailable"}).Redirect("/")
	}

	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandlePricing returns the public plan catalog as JSON
func HandlePricing(c *fiber.Ctx) error {
	catalog := plans.Default().All()

	out := make([]fiber.Map, 0, len(catalog))
	for _, p := range catalog {
		features := make([]fiber.Map, 0, len(p.Features))
		for _, f := range p.Features {
			features = append(features, fiber.Map{
				"name":     f.Name,
				"included": f.Included,
				"limit":    f.Limit,
			})
		}
		out = append(out, fiber.Map{
			"id":             p.ID,
			"name":           p.Name,
			"slug":           p.Slug,
			"description":    p.Description,
			"price":          p.Price,
			"formattedPrice": plans.FormatPrice(p.Price, p.Currency),
			"currency":       p.Currency,
			"interval":       p.Interval,
			"features":       features,
		})
	}

	return c.JSON(fiber.Map{"plans": out})
}
