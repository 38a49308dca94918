package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// MemoryCheckoutRepository is an in-memory implementation of
// CheckoutRepository. Finalize writes through to the order and cart
// repositories it was built with.
type MemoryCheckoutRepository struct {
	checkouts map[string]*models.Checkout
	mu        sync.Mutex

	orders *MemoryOrderRepository
	carts  *MemoryCartRepository
}

// NewMemoryCheckoutRepository creates a new instance of MemoryCheckoutRepository.
func NewMemoryCheckoutRepository(orders *MemoryOrderRepository, carts *MemoryCartRepository) *MemoryCheckoutRepository {
	return &MemoryCheckoutRepository{
		checkouts: make(map[string]*models.Checkout),
		orders:    orders,
		carts:     carts,
	}
}

func (r *MemoryCheckoutRepository) Create(_ context.Context, checkout *models.Checkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if checkout.ID == "" {
		checkout.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	checkout.CreatedAt, checkout.UpdatedAt = now, now
	r.checkouts[checkout.ID] = checkout.Clone()
	return nil
}

func (r *MemoryCheckoutRepository) GetByID(_ context.Context, id string) (*models.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	checkout, ok := r.checkouts[id]
	if !ok {
		return nil, notFound("checkout", id)
	}
	return checkout.Clone(), nil
}

func (r *MemoryCheckoutRepository) MarkPaid(_ context.Context, id string, status models.PaymentStatus, details models.PaymentDetails, at time.Time) (*models.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.checkouts[id]
	if !ok {
		return nil, notFound("checkout", id)
	}
	checkout := stored.Clone()
	changed, err := checkout.MarkPaid(status, details, at)
	if err != nil {
		return nil, err
	}
	if changed {
		checkout.UpdatedAt = time.Now().UTC()
		r.checkouts[id] = checkout
	}
	return checkout.Clone(), nil
}

func (r *MemoryCheckoutRepository) Finalize(ctx context.Context, id string, at time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.checkouts[id]
	if !ok {
		return nil, notFound("checkout", id)
	}
	if err := stored.CanFinalize(); err != nil {
		return nil, err
	}

	order := models.NewOrderFromCheckout(stored)
	if err := r.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	checkout := stored.Clone()
	if err := checkout.Finalize(at); err != nil {
		return nil, err
	}
	checkout.UpdatedAt = time.Now().UTC()
	r.checkouts[id] = checkout

	err := r.carts.Delete(ctx, models.UserOwner(checkout.UserID))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return order, nil
}
