package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// CheckoutRepository defines the interface for checkout data access.
type CheckoutRepository interface {
	Create(ctx context.Context, checkout *models.Checkout) error
	GetByID(ctx context.Context, id string) (*models.Checkout, error)
	// MarkPaid applies a payment signal under a row lock. Repeating it on a
	// paid or finalized checkout returns the stored checkout unchanged.
	MarkPaid(ctx context.Context, id string, status models.PaymentStatus, details models.PaymentDetails, at time.Time) (*models.Checkout, error)
	// Finalize atomically marks a paid checkout finalized, creates its order
	// and deletes the owner's cart. Exactly one caller wins; the others get
	// ErrAlreadyFinalized.
	Finalize(ctx context.Context, id string, at time.Time) (*models.Order, error)
}
