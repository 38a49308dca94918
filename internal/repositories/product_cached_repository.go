package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/models"
	"storefront/pkg/cache"
)

const (
	bestSellerKey  = "catalog:best-seller"
	newArrivalsKey = "catalog:new-arrivals:%d"
)

// CachedProductRepository decorates a ProductRepository, caching the
// best-seller and new-arrivals queries. Writes invalidate both. Cache
// failures are logged and the wrapped store answers instead.
type CachedProductRepository struct {
	ProductRepository
	cache cache.Cache
	ttl   time.Duration

	// arrivalLimits records which new-arrival keys may be populated.
	arrivalLimits []int
}

// NewCachedProductRepository wraps next with c.
func NewCachedProductRepository(next ProductRepository, c cache.Cache, ttl time.Duration, arrivalLimits ...int) *CachedProductRepository {
	if len(arrivalLimits) == 0 {
		arrivalLimits = []int{8}
	}
	return &CachedProductRepository{ProductRepository: next, cache: c, ttl: ttl, arrivalLimits: arrivalLimits}
}

func (r *CachedProductRepository) BestSeller(ctx context.Context) (*models.Product, error) {
	var product models.Product
	if r.load(ctx, bestSellerKey, &product) {
		return &product, nil
	}
	p, err := r.ProductRepository.BestSeller(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, bestSellerKey, p)
	return p, nil
}

func (r *CachedProductRepository) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	if !r.cacheable(limit) {
		return r.ProductRepository.NewArrivals(ctx, limit)
	}
	key := fmt.Sprintf(newArrivalsKey, limit)
	var products []models.Product
	if r.load(ctx, key, &products) {
		return products, nil
	}
	products, err := r.ProductRepository.NewArrivals(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, products)
	return products, nil
}

func (r *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) cacheable(limit int) bool {
	for _, l := range r.arrivalLimits {
		if l == limit {
			return true
		}
	}
	return false
}

func (r *CachedProductRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache entry corrupt")
		return false
	}
	return true
}

func (r *CachedProductRepository) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache encode failed")
		return
	}
	if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (r *CachedProductRepository) invalidate(ctx context.Context) {
	keys := []string{bestSellerKey}
	for _, l := range r.arrivalLimits {
		keys = append(keys, fmt.Sprintf(newArrivalsKey, l))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
