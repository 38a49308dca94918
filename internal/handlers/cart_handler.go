package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// CartHandler serves the carts of users and guests.
type CartHandler struct {
	service *services.CartService
	bind    binder
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service, bind: newBinder()}
}

// RegisterRoutes registers the cart routes. All of them accept guests
// except merge.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	cart := router.Group("/cart")
	cart.Post("/merge", guards.Auth, h.HandleMerge)
	cart.Get("/", guards.Optional, h.HandleGetCart)
	cart.Post("/", guards.Optional, h.HandleAddItem)
	cart.Put("/", guards.Optional, h.HandleUpdateQuantity)
	cart.Delete("/", guards.Optional, h.HandleRemoveItem)
}

type cartItemRequest struct {
	GuestID   string `json:"guestId"`
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type addItemRequest struct {
	cartItemRequest
	Quantity int `json:"quantity" validate:"required"`
}

type updateQuantityRequest struct {
	cartItemRequest
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type mergeRequest struct {
	GuestID string `json:"guestId" validate:"required"`
}

// cartOwner resolves the owner of the request. An authenticated user wins
// over any guestId.
func cartOwner(c *fiber.Ctx, guestID string) (models.CartOwner, error) {
	if user := middleware.CurrentUser(c); user != nil {
		return models.UserOwner(user.ID), nil
	}
	if guestID == "" {
		guestID = c.Query("guestId")
	}
	if guestID == "" {
		return models.CartOwner{}, fmt.Errorf("guestId is required without a login: %w", apperrors.ErrInvalidRequest)
	}
	return models.GuestOwner(guestID), nil
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	owner, err := cartOwner(c, "")
	if err != nil {
		return err
	}
	cart, err := h.service.Get(c.UserContext(), owner)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleAddItem adds quantity (which may be negative) to a cart line,
// creating the cart on first use.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	owner, err := cartOwner(c, req.GuestID)
	if err != nil {
		return err
	}
	cart, err := h.service.AddItem(c.UserContext(), owner, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleUpdateQuantity sets an absolute quantity; zero removes the line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req updateQuantityRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	owner, err := cartOwner(c, req.GuestID)
	if err != nil {
		return err
	}
	cart, err := h.service.UpdateQuantity(c.UserContext(), owner, req.ProductID, req.Size, req.Color, *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	owner, err := cartOwner(c, req.GuestID)
	if err != nil {
		return err
	}
	cart, err := h.service.RemoveItem(c.UserContext(), owner, req.ProductID, req.Size, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleMerge moves the guest cart into the caller's cart.
func (h *CartHandler) HandleMerge(c *fiber.Ctx) error {
	var req mergeRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	cart, err := h.service.Merge(c.UserContext(), middleware.CurrentUser(c), req.GuestID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}
