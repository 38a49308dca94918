package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

const userKey = "user"

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Guards bundles the route guards so handlers can attach them per route.
type Guards struct {
	// Auth requires a valid bearer token.
	Auth fiber.Handler
	// Optional attaches the user when a token is sent; an invalid token still fails.
	Optional fiber.Handler
	// Admin requires an attached admin user. Chain it after Auth.
	Admin fiber.Handler
}

// NewGuards builds the guards around auth.
func NewGuards(auth Authenticator) Guards {
	return Guards{
		Auth:     AuthRequired(auth),
		Optional: OptionalAuth(auth),
		Admin:    AdminOnly(),
	}
}

// CurrentUser returns the authenticated user of the request, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. present is false when the header is absent.
func bearerToken(c *fiber.Ctx) (token string, present bool, err error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, fmt.Errorf("authorization header format must be 'Bearer <token>': %w", apperrors.ErrUnauthenticated)
	}
	return strings.TrimSpace(parts[1]), true, nil
}

func authenticate(c *fiber.Ctx, auth Authenticator, token string) error {
	user, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
		return err
	}
	c.Locals(userKey, user)
	return nil
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if err != nil {
			return err
		}
		if !present {
			return fmt.Errorf("no token provided: %w", apperrors.ErrUnauthenticated)
		}
		if err := authenticate(c, auth, token); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth attaches the user when an Authorization header is sent and
// lets anonymous requests through.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if err != nil {
			return err
		}
		if present {
			if err := authenticate(c, auth, token); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

// AdminOnly rejects requests whose user is not an admin.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fmt.Errorf("no authenticated user: %w", apperrors.ErrUnauthenticated)
		}
		if !user.IsAdmin() {
			return fmt.Errorf("user %s is not an admin: %w", user.ID, apperrors.ErrForbidden)
		}
		return c.Next()
	}
}
