package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/launchkit/launchkit/app/controllers"
	"github.com/launchkit/launchkit/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes (session-authenticated)
	v1 := api.Group("/v1", middleware.RequireAPISessionAuth)
	v1.Get("/user/account", controllers.HandleGetUserAccount)
	v1.Get("/subscription", controllers.HandleGetSubscription)
	v1.Get("/subscription/status", controllers.HandleGetSubscriptionStatus)
	v1.Get("/subscription/access", controllers.HandleGetSubscriptionAccess)
	v1.Get("/subscriptions", controllers.HandleListSubscriptions)
	v1.Post("/assign-role", controllers.HandleAssignRole)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
