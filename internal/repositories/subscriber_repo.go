package repositories

import (
	"context"

	"storefront/internal/models"
)

// SubscriberRepository stores newsletter subscriptions.
type SubscriberRepository interface {
	// Create fails with ErrConflict when the email is already subscribed.
	Create(ctx context.Context, subscriber *models.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
}
