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

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func ownerScope(tx *gorm.DB, owner models.CartOwner) *gorm.DB {
	if owner.UserID != "" {
		return tx.Where("user_id = ?", owner.UserID)
	}
	return tx.Where("guest_id = ?", owner.GuestID)
}

// lockCart loads the owner's cart with a row lock. ok is false when the owner
// has no cart.
func lockCart(tx *gorm.DB, owner models.CartOwner) (cart models.Cart, ok bool, err error) {
	err = ownerScope(tx.Clauses(clause.Locking{Strength: "UPDATE"}), owner).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart, false, nil
	}
	if err != nil {
		return cart, false, storeError(err, "failed to load cart for %s", owner)
	}
	return cart, true, nil
}

func (r *GORMCartRepository) Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := ownerScope(r.db.WithContext(ctx), owner).First(&cart).Error; err != nil {
		return nil, storeError(err, "failed to get cart for %s", owner)
	}
	return &cart, nil
}

func (r *GORMCartRepository) Mutate(ctx context.Context, owner models.CartOwner, create bool, fn CartMutation) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := r.mutate(ctx, owner, create, fn)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// another request created the same owner's cart first
		cart, err = r.mutate(ctx, owner, create, fn)
	}
	return cart, err
}

func (r *GORMCartRepository) mutate(ctx context.Context, owner models.CartOwner, create bool, fn CartMutation) (*models.Cart, error) {
	var result *models.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, ok, err := lockCart(tx, owner)
		if err != nil {
			return err
		}
		if !ok {
			if !create {
				return fmt.Errorf("cart for %s: %w", owner, apperrors.ErrNotFound)
			}
			cart = *models.NewCart(owner)
			cart.ID = uuid.New().String()
		}

		if err := fn(&cart); err != nil {
			return err
		}
		cart.Recalculate()

		if ok {
			err = tx.Save(&cart).Error
		} else {
			err = tx.Create(&cart).Error
		}
		if err != nil {
			return storeError(err, "failed to save cart for %s", owner)
		}
		result = &cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GORMCartRepository) MergeGuest(ctx context.Context, guestID, userID string) (*models.Cart, error) {
	guestOwner, userOwner := models.GuestOwner(guestID), models.UserOwner(userID)
	var result *models.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guest, hasGuest, err := lockCart(tx, guestOwner)
		if err != nil {
			return err
		}
		user, hasUser, err := lockCart(tx, userOwner)
		if err != nil {
			return err
		}

		switch {
		case !hasGuest && hasUser:
			result = &user
			return nil
		case !hasGuest:
			return fmt.Errorf("no cart for %s or %s: %w", guestOwner, userOwner, apperrors.ErrNotFound)
		case len(guest.Products) == 0:
			return fmt.Errorf("cart for %s is empty: %w", guestOwner, apperrors.ErrInvalidRequest)
		}

		if hasUser {
			user.Merge(&guest)
			user.Recalculate()
			if err := tx.Save(&user).Error; err != nil {
				return storeError(err, "failed to save merged cart for %s", userOwner)
			}
			if err := tx.Delete(&models.Cart{}, "id = ?", guest.ID).Error; err != nil {
				return storeError(err, "failed to delete cart for %s", guestOwner)
			}
			result = &user
			return nil
		}

		guest.SetOwner(userOwner)
		guest.Recalculate()
		if err := tx.Save(&guest).Error; err != nil {
			return storeError(err, "failed to assign cart to %s", userOwner)
		}
		result = &guest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, owner models.CartOwner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	res := ownerScope(r.db.WithContext(ctx), owner).Delete(&models.Cart{})
	if res.Error != nil {
		return storeError(res.Error, "failed to delete cart for %s", owner)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart for %s: %w", owner, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteGuestCartsOlderThan removes guest carts last updated before cutoff.
func (r *GORMCartRepository) DeleteGuestCartsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("guest_id IS NOT NULL AND updated_at < ?", cutoff).
		Delete(&models.Cart{})
	if res.Error != nil {
		return 0, storeError(res.Error, "failed to delete stale guest carts")
	}
	return res.RowsAffected, nil
}
