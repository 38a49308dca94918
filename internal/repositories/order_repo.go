package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// created by CheckoutRepository.Finalize; Create exists for seeding.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}
