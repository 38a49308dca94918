package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

const (
	newArrivalsLimit = 8
	similarLimit     = 4
)

// ProductService handles business logic related to products.
type ProductService struct {
	productRepo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repositories.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
	}
}

// Query runs a filtered catalog query.
func (s *ProductService) Query(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.productRepo.Query(ctx, filter)
}

// List returns the whole catalog.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.List(ctx)
}

// GetByID retrieves a single product by its ID.
func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) BestSeller(ctx context.Context) (*models.Product, error) {
	return s.productRepo.BestSeller(ctx)
}

func (s *ProductService) NewArrivals(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.NewArrivals(ctx, newArrivalsLimit)
}

// Similar returns up to four products sharing gender and category with id.
func (s *ProductService) Similar(ctx context.Context, id string) ([]models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.productRepo.Similar(ctx, product, similarLimit)
}

// Create stores a new product owned by the creating admin.
func (s *ProductService) Create(ctx context.Context, creator *models.User, product *models.Product) (*models.Product, error) {
	// identity and timestamps are assigned by the store
	product.ID = ""
	product.CreatedAt, product.UpdatedAt = time.Time{}, time.Time{}
	if creator != nil {
		product.UserID = creator.ID
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Msg("product created")
	return product, nil
}

// Update applies only the fields present in upd.
func (s *ProductService) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(product)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
