package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// UserHandler handles registration, login and the caller's profile.
type UserHandler struct {
	auth *services.AuthService
	bind binder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth, bind: newBinder()}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	users := router.Group("/users")
	users.Post("/register", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Get("/profile", guards.Auth, h.HandleProfile)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	user, token, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user, "token": token})
}

// HandleProfile returns the authenticated user.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}
