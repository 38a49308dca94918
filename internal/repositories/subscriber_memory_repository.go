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

// MemorySubscriberRepository keys subscribers by normalized email.
type MemorySubscriberRepository struct {
	byEmail map[string]models.Subscriber
	mu      sync.RWMutex
}

func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{byEmail: make(map[string]models.Subscriber)}
}

func (r *MemorySubscriberRepository) Create(_ context.Context, subscriber *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriber.Email = models.NormalizeEmail(subscriber.Email)
	if _, ok := r.byEmail[subscriber.Email]; ok {
		return fmt.Errorf("email %s already subscribed: %w", subscriber.Email, apperrors.ErrConflict)
	}
	if subscriber.ID == "" {
		subscriber.ID = uuid.New().String()
	}
	if subscriber.SubscribedAt.IsZero() {
		subscriber.SubscribedAt = time.Now().UTC()
	}
	r.byEmail[subscriber.Email] = *subscriber
	return nil
}

func (r *MemorySubscriberRepository) GetByEmail(_ context.Context, email string) (*models.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subscriber, ok := r.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("subscriber %s not found: %w", email, apperrors.ErrNotFound)
	}
	return &subscriber, nil
}
