package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
)

func memoryServices() server.Services {
	users := repositories.NewMemoryUserRepository()
	products := repositories.NewMemoryProductRepository()
	carts := repositories.NewMemoryCartRepository()
	orders := repositories.NewMemoryOrderRepository()
	checkouts := repositories.NewMemoryCheckoutRepository(orders, carts)
	subscribers := repositories.NewMemorySubscriberRepository()

	return server.Services{
		Auth:        services.NewAuthService(users, "test_jwt_secret", time.Hour),
		Users:       services.NewUserService(users),
		Products:    services.NewProductService(products),
		Carts:       services.NewCartService(carts, products),
		Checkouts:   services.NewCheckoutService(checkouts, nil),
		Orders:      services.NewOrderService(orders),
		Subscribers: services.NewSubscriberService(subscribers),
	}
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := server.New(memoryServices(), server.Options{
			HealthChecks: map[string]server.HealthCheck{
				"database": func(context.Context) error { return nil },
			},
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "ok", body.Dependencies["database"])
	})

	t.Run("degraded", func(t *testing.T) {
		app := server.New(memoryServices(), server.Options{
			HealthChecks: map[string]server.HealthCheck{
				"redis": func(context.Context) error { return errors.New("connection refused") },
			},
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestUnknownRoute(t *testing.T) {
	app := server.New(memoryServices(), server.Options{})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	app := server.New(memoryServices(), server.Options{CORSOrigins: "http://localhost:5173"})
	req := httptest.NewRequest("OPTIONS", "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
