package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// AdminHandler serves the back-office CRUD over users, products and orders.
type AdminHandler struct {
	users    *services.UserService
	products *ProductHandler
	orders   *services.OrderService
	bind     binder
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *services.UserService, products *services.ProductService, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{
		users:    users,
		products: NewProductHandler(products),
		orders:   orders,
		bind:     newBinder(),
	}
}

// RegisterRoutes mounts /admin behind the login and admin guards, in that
// order, so anonymous callers get 401 before any role check.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	admin := router.Group("/admin", guards.Auth, guards.Admin)

	admin.Get("/users", h.HandleListUsers)
	admin.Post("/users", h.HandleCreateUser)
	admin.Put("/users/:id", h.HandleUpdateUser)
	admin.Delete("/users/:id", h.HandleDeleteUser)

	admin.Get("/products", h.HandleListProducts)
	admin.Post("/products", h.products.HandleCreateProduct)
	admin.Put("/products/:id", h.products.HandleUpdateProduct)
	admin.Delete("/products/:id", h.products.HandleDeleteProduct)

	admin.Get("/orders", h.HandleListOrders)
	admin.Put("/orders/:id", h.HandleUpdateOrderStatus)
	admin.Delete("/orders/:id", h.HandleDeleteOrder)
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=customer admin"`
}

type updateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=customer admin"`
}

type updateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *AdminHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully", "user": user})
}

func (h *AdminHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), c.Params("id"), services.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": user})
}

func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (h *AdminHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.products.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleListOrders lists every order, newest first.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetAllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req updateOrderRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateOrderStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *AdminHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.orders.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Order removed"})
}
