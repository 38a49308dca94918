package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// SubscriberService handles newsletter sign-ups.
type SubscriberService struct {
	subscribers repositories.SubscriberRepository
}

func NewSubscriberService(subscribers repositories.SubscriberRepository) *SubscriberService {
	return &SubscriberService{subscribers: subscribers}
}

// Subscribe records email. A repeated email fails with ErrConflict.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	subscriber := &models.Subscriber{Email: email}
	if err := s.subscribers.Create(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	log.Info().Str("subscriber_id", subscriber.ID).Msg("newsletter subscription added")
	return subscriber, nil
}
