package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Query returns the products matching every predicate of filter.
	Query(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// BestSeller returns the highest rated product, ties broken by lowest ID.
	BestSeller(ctx context.Context) (*models.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
	// Similar returns products sharing gender and category with p, p excluded.
	Similar(ctx context.Context, p *models.Product, limit int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
