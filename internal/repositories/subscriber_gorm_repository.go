package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

type GORMSubscriberRepository struct {
	db *gorm.DB
}

func NewGORMSubscriberRepository(db *gorm.DB) *GORMSubscriberRepository {
	return &GORMSubscriberRepository{db: db}
}

func (r *GORMSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if subscriber.ID == "" {
		subscriber.ID = uuid.New().String()
	}
	subscriber.Email = models.NormalizeEmail(subscriber.Email)
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		return storeError(err, "failed to subscribe %s", subscriber.Email)
	}
	return nil
}

func (r *GORMSubscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.db.WithContext(ctx).First(&subscriber, "email = ?", models.NormalizeEmail(email)).Error
	if err != nil {
		return nil, storeError(err, "failed to get subscriber %s", email)
	}
	return &subscriber, nil
}
