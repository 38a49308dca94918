package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
// A single lock serializes every write, so a mutation and its total
// recomputation are never observed apart.
type MemoryCartRepository struct {
	carts map[models.CartOwner]*models.Cart
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[models.CartOwner]*models.Cart),
	}
}

func (r *MemoryCartRepository) Get(_ context.Context, owner models.CartOwner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[owner]
	if !ok {
		return nil, fmt.Errorf("cart for %s: %w", owner, apperrors.ErrNotFound)
	}
	return cart.Clone(), nil
}

func (r *MemoryCartRepository) Mutate(_ context.Context, owner models.CartOwner, create bool, fn CartMutation) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var cart *models.Cart
	if stored, ok := r.carts[owner]; ok {
		cart = stored.Clone()
	} else if create {
		cart = models.NewCart(owner)
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
	} else {
		return nil, fmt.Errorf("cart for %s: %w", owner, apperrors.ErrNotFound)
	}

	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.Recalculate()
	cart.UpdatedAt = now
	r.carts[owner] = cart
	return cart.Clone(), nil
}

func (r *MemoryCartRepository) MergeGuest(_ context.Context, guestID, userID string) (*models.Cart, error) {
	guestOwner, userOwner := models.GuestOwner(guestID), models.UserOwner(userID)
	r.mu.Lock()
	defer r.mu.Unlock()

	guest, hasGuest := r.carts[guestOwner]
	user, hasUser := r.carts[userOwner]
	switch {
	case !hasGuest && hasUser:
		return user.Clone(), nil
	case !hasGuest:
		return nil, fmt.Errorf("no cart for %s or %s: %w", guestOwner, userOwner, apperrors.ErrNotFound)
	case len(guest.Products) == 0:
		return nil, fmt.Errorf("cart for %s is empty: %w", guestOwner, apperrors.ErrInvalidRequest)
	}

	var merged *models.Cart
	if hasUser {
		merged = user.Clone()
		merged.Merge(guest)
	} else {
		merged = guest.Clone()
		merged.SetOwner(userOwner)
	}
	merged.Recalculate()
	merged.UpdatedAt = time.Now().UTC()
	delete(r.carts, guestOwner)
	r.carts[userOwner] = merged
	return merged.Clone(), nil
}

func (r *MemoryCartRepository) Delete(_ context.Context, owner models.CartOwner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[owner]; !ok {
		return fmt.Errorf("cart for %s: %w", owner, apperrors.ErrNotFound)
	}
	delete(r.carts, owner)
	return nil
}

func (r *MemoryCartRepository) DeleteGuestCartsOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for owner, cart := range r.carts {
		if owner.GuestID != "" && cart.UpdatedAt.Before(cutoff) {
			delete(r.carts, owner)
			deleted++
		}
	}
	return deleted, nil
}
