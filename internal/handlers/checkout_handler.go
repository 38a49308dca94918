package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// CheckoutHandler exposes the checkout saga.
type CheckoutHandler struct {
	service *services.CheckoutService
	bind    binder
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service, bind: newBinder()}
}

// RegisterRoutes registers the checkout routes; all require a login.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	checkout := router.Group("/checkout", guards.Auth)
	checkout.Post("/", h.HandleCreateCheckout)
	checkout.Get("/:id", h.HandleGetCheckout)
	checkout.Put("/:id/pay", h.HandlePayCheckout)
	checkout.Post("/:id/finalize", h.HandleFinalizeCheckout)
}

type createCheckoutRequest struct {
	CheckoutItems   []models.LineItem      `json:"checkoutItems" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
	TotalPrice      float64                `json:"totalPrice" validate:"gte=0"`
}

type payCheckoutRequest struct {
	PaymentStatus  string                `json:"paymentStatus" validate:"required"`
	PaymentDetails models.PaymentDetails `json:"paymentDetails"`
}

func (h *CheckoutHandler) HandleCreateCheckout(c *fiber.Ctx) error {
	var req createCheckoutRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	checkout, err := h.service.Create(c.UserContext(), middleware.CurrentUser(c), services.CreateCheckoutInput{
		Items:           req.CheckoutItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(checkout)
}

func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	checkout, err := h.service.Get(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(checkout)
}

// HandlePayCheckout records the payment result. Repeating a successful
// payment returns the checkout unchanged.
func (h *CheckoutHandler) HandlePayCheckout(c *fiber.Ctx) error {
	var req payCheckoutRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	checkout, err := h.service.MarkPaid(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req.PaymentStatus, req.PaymentDetails)
	if err != nil {
		return err
	}
	return c.JSON(checkout)
}

// HandleFinalizeCheckout turns a paid checkout into an order.
func (h *CheckoutHandler) HandleFinalizeCheckout(c *fiber.Ctx) error {
	order, err := h.service.Finalize(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
