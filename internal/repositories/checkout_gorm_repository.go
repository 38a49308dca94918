package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// GORMCheckoutRepository is a GORM implementation of CheckoutRepository.
type GORMCheckoutRepository struct {
	db *gorm.DB
}

// NewGORMCheckoutRepository creates a new instance of GORMCheckoutRepository.
func NewGORMCheckoutRepository(db *gorm.DB) *GORMCheckoutRepository {
	return &GORMCheckoutRepository{db: db}
}

func (r *GORMCheckoutRepository) Create(ctx context.Context, checkout *models.Checkout) error {
	if checkout.ID == "" {
		checkout.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		return storeError(err, "failed to create checkout for user %s", checkout.UserID)
	}
	return nil
}

func (r *GORMCheckoutRepository) GetByID(ctx context.Context, id string) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := r.db.WithContext(ctx).First(&checkout, "id = ?", id).Error; err != nil {
		return nil, storeError(err, "failed to get checkout by ID %s", id)
	}
	return &checkout, nil
}

func (r *GORMCheckoutRepository) MarkPaid(ctx context.Context, id string, status models.PaymentStatus, details models.PaymentDetails, at time.Time) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&checkout, "id = ?", id).Error; err != nil {
			return storeError(err, "failed to load checkout %s", id)
		}
		changed, err := checkout.MarkPaid(status, details, at)
		if err != nil || !changed {
			return err
		}
		if err := tx.Save(&checkout).Error; err != nil {
			return storeError(err, "failed to mark checkout %s paid", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

// Finalize admits a single caller with a conditional update on the checkout
// flags; the order insert and cart delete share its transaction.
func (r *GORMCheckoutRepository) Finalize(ctx context.Context, id string, at time.Time) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Checkout{}).
			Where("id = ? AND is_paid = ? AND is_finalized = ?", id, true, false).
			Updates(map[string]any{"is_finalized": true, "finalized_at": at})
		if res.Error != nil {
			return storeError(res.Error, "failed to finalize checkout %s", id)
		}

		var checkout models.Checkout
		if err := tx.First(&checkout, "id = ?", id).Error; err != nil {
			return storeError(err, "failed to load checkout %s", id)
		}
		if res.RowsAffected == 0 {
			if err := checkout.CanFinalize(); err != nil {
				return err
			}
			return fmt.Errorf("checkout %s changed concurrently: %w", id, apperrors.ErrAlreadyFinalized)
		}

		order = models.NewOrderFromCheckout(&checkout)
		order.ID = uuid.New().String()
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("order for checkout %s exists: %w", id, apperrors.ErrAlreadyFinalized)
			}
			return storeError(err, "failed to create order for checkout %s", id)
		}

		if err := tx.Where("user_id = ?", checkout.UserID).Delete(&models.Cart{}).Error; err != nil {
			return storeError(err, "failed to delete cart of user %s", checkout.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
