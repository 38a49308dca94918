package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// CartMutation edits a loaded cart. Returning an error aborts the write.
type CartMutation func(cart *models.Cart) error

// CartRepository defines the interface for cart data access. Every write
// recomputes the cart total in the same write as the item change.
type CartRepository interface {
	Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	// Mutate loads the owner's cart (creating it when create is set), applies
	// fn, recomputes the total and saves, all as one atomic step.
	Mutate(ctx context.Context, owner models.CartOwner, create bool, fn CartMutation) (*models.Cart, error)
	// MergeGuest folds the guest cart into the user's cart and deletes the
	// guest cart. With no user cart the guest cart is handed to the user.
	MergeGuest(ctx context.Context, guestID, userID string) (*models.Cart, error)
	Delete(ctx context.Context, owner models.CartOwner) error
	DeleteGuestCartsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
