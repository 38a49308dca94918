// Package server assembles the Fiber application: middleware, health check
// and the /api routes.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// Services are the domain services the routes are served from.
type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Products    *services.ProductService
	Carts       *services.CartService
	Checkouts   *services.CheckoutService
	Orders      *services.OrderService
	Subscribers *services.SubscriberService
}

// HealthCheck reports whether one dependency is reachable for /health.
type HealthCheck func(ctx context.Context) error

// Options tune the HTTP surface.
type Options struct {
	CORSOrigins  string
	AccessLog    bool
	HealthChecks map[string]HealthCheck
}

const healthTimeout = 2 * time.Second

// New builds the app with every route registered under /api.
func New(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if opts.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", healthHandler(opts.HealthChecks))

	guards := middleware.NewGuards(svc.Auth)
	api := app.Group("/api")
	handlers.NewUserHandler(svc.Auth).RegisterRoutes(api, guards)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(api, guards)
	handlers.NewCartHandler(svc.Carts).RegisterRoutes(api, guards)
	handlers.NewCheckoutHandler(svc.Checkouts).RegisterRoutes(api, guards)
	handlers.NewOrderHandler(svc.Orders).RegisterRoutes(api, guards)
	handlers.NewAdminHandler(svc.Users, svc.Products, svc.Orders).RegisterRoutes(api, guards)
	handlers.NewSubscriberHandler(svc.Subscribers).RegisterRoutes(api, guards)

	return app
}

// healthHandler reports "healthy" only when every check passes; a failing
// dependency turns the response into a 503.
func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		status := "healthy"
		code := fiber.StatusOK
		deps := make(fiber.Map, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":       status,
			"time":         time.Now().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}
