package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// snapshot returns deep copies of all products, oldest first. Callers hold mu.
func (r *MemoryProductRepository) snapshot() []models.Product {
	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *MemoryProductRepository) Query(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0)
	for _, p := range r.snapshot() {
		p := p
		if f.Matches(&p) {
			products = append(products, p)
		}
	}
	models.SortProducts(products, f.SortBy)
	if f.Limit > 0 && len(products) > f.Limit {
		products = products[:f.Limit]
	}
	return products, nil
}

// List returns all products.
func (r *MemoryProductRepository) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	product = product.Clone()
	return &product, nil
}

func (r *MemoryProductRepository) BestSeller(_ context.Context) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *models.Product
	for _, p := range r.snapshot() {
		p := p
		if best == nil || p.Rating > best.Rating || (p.Rating == best.Rating && p.ID < best.ID) {
			best = &p
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no products in catalog: %w", apperrors.ErrNotFound)
	}
	return best, nil
}

func (r *MemoryProductRepository) NewArrivals(_ context.Context, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := r.snapshot()
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *MemoryProductRepository) Similar(_ context.Context, p *models.Product, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0)
	for _, candidate := range r.snapshot() {
		if candidate.ID != p.ID && candidate.Gender == p.Gender && candidate.Category == p.Category {
			products = append(products, candidate)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Rating != products[j].Rating {
			return products[i].Rating > products[j].Rating
		}
		return products[i].ID < products[j].ID
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *MemoryProductRepository) skuTaken(sku, exceptID string) bool {
	for id, p := range r.products {
		if p.SKU == sku && id != exceptID {
			return true
		}
	}
	return false
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(product.SKU, "") {
		return fmt.Errorf("sku %s already exists: %w", product.SKU, apperrors.ErrConflict)
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = product.Clone()
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return notFound("product", product.ID)
	}
	if r.skuTaken(product.SKU, product.ID) {
		return fmt.Errorf("sku %s already exists: %w", product.SKU, apperrors.ErrConflict)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = product.Clone()
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return notFound("product", id)
	}
	delete(r.products, id)
	return nil
}
