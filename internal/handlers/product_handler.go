package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	bind    binder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service, bind: newBinder()}
}

// RegisterRoutes registers the public catalog routes and the admin writes.
// The fixed paths are registered before /:id so they are not shadowed.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	products := router.Group("/products")
	products.Get("/", h.HandleQueryProducts)
	products.Get("/best-seller", h.HandleBestSeller)
	products.Get("/new-arrivals", h.HandleNewArrivals)
	products.Get("/similar/:id", h.HandleSimilar)
	products.Get("/:id", h.HandleGetProductByID)

	products.Post("/", guards.Auth, guards.Admin, h.HandleCreateProduct)
	products.Put("/:id", guards.Auth, guards.Admin, h.HandleUpdateProduct)
	products.Delete("/:id", guards.Auth, guards.Admin, h.HandleDeleteProduct)
}

// queryValue treats "all" the same as an absent parameter.
func queryValue(c *fiber.Ctx, key string) string {
	v := strings.TrimSpace(c.Query(key))
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func queryPrice(c *fiber.Ctx, key string) (*float64, error) {
	v := queryValue(c, key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, &RequestError{
			Message: "Invalid query parameter",
			Fields:  map[string]string{key: fmt.Sprintf("%q is not a valid price", v)},
		}
	}
	return &f, nil
}

// parseProductFilter reads the catalog query parameters. A limit that is
// not a positive integer means unlimited.
func parseProductFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	f := models.ProductFilter{
		Collection: queryValue(c, "collection"),
		Category:   queryValue(c, "category"),
		Materials:  models.SplitList(queryValue(c, "material")),
		Brands:     models.SplitList(queryValue(c, "brand")),
		Sizes:      models.SplitList(queryValue(c, "size")),
		Color:      queryValue(c, "color"),
		Gender:     queryValue(c, "gender"),
		Search:     strings.TrimSpace(c.Query("search")),
		SortBy:     models.ParseProductSort(c.Query("sortBy")),
	}
	var err error
	if f.MinPrice, err = queryPrice(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryPrice(c, "maxPrice"); err != nil {
		return f, err
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	return f, nil
}

// HandleQueryProducts runs a filtered catalog query.
func (h *ProductHandler) HandleQueryProducts(c *fiber.Ctx) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return err
	}
	products, err := h.service.Query(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleBestSeller(c *fiber.Ctx) error {
	product, err := h.service.BestSeller(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleNewArrivals(c *fiber.Ctx) error {
	products, err := h.service.NewArrivals(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleSimilar(c *fiber.Ctx) error {
	products, err := h.service.Similar(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product owned by the calling admin.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := h.bind.body(c, &product); err != nil {
		return err
	}
	created, err := h.service.Create(c.UserContext(), middleware.CurrentUser(c), &product)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct applies a partial update. Fields missing from the
// body keep their stored values.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var upd models.ProductUpdate
	if err := h.bind.body(c, &upd); err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return fmt.Errorf("product id is required: %w", apperrors.ErrInvalidRequest)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}
