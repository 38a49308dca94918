package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// SubscriberHandler serves the newsletter sign-up form.
type SubscriberHandler struct {
	service *services.SubscriberService
	bind    binder
}

func NewSubscriberHandler(service *services.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{service: service, bind: newBinder()}
}

// RegisterRoutes registers the public subscribe route.
func (h *SubscriberHandler) RegisterRoutes(router fiber.Router, _ middleware.Guards) {
	router.Post("/subscribe", h.HandleSubscribe)
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *SubscriberHandler) HandleSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	subscriber, err := h.service.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Successfully subscribed to the newsletter!",
		"subscriber": subscriber,
	})
}
