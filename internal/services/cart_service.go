package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService implements cart mutation for users and guests.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the owner's cart, or an empty unsaved cart when none exists.
func (s *CartService) Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, owner)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.NewCart(owner), nil
	}
	return cart, err
}

// AddItem adds quantity of a product variant, creating the cart on first use.
// New lines snapshot the product's name, image and price.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, productID, size, color string, quantity int) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := models.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.PrimaryImage(),
		Price:     product.Price,
		Size:      size,
		Color:     color,
	}
	return s.carts.Mutate(ctx, owner, true, func(c *models.Cart) error {
		return c.AddItem(item, quantity)
	})
}

// UpdateQuantity sets the absolute quantity of a line; zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, owner models.CartOwner, productID, size, color string, quantity int) (*models.Cart, error) {
	return s.carts.Mutate(ctx, owner, false, func(c *models.Cart) error {
		return c.SetQuantity(productID, size, color, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, productID, size, color string) (*models.Cart, error) {
	return s.carts.Mutate(ctx, owner, false, func(c *models.Cart) error {
		return c.RemoveItem(productID, size, color)
	})
}

// Clear empties the owner's cart without deleting it.
func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return s.carts.Mutate(ctx, owner, false, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
}

// Merge moves a guest cart into the user's cart after login.
func (s *CartService) Merge(ctx context.Context, user *models.User, guestID string) (*models.Cart, error) {
	if guestID == "" {
		return nil, fmt.Errorf("guestId is required: %w", apperrors.ErrInvalidRequest)
	}
	cart, err := s.carts.MergeGuest(ctx, guestID, user.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Str("guest_id", guestID).Msg("guest cart merged")
	return cart, nil
}

// PurgeGuestCarts deletes guest carts idle for longer than ttl.
func (s *CartService) PurgeGuestCarts(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	n, err := s.carts.DeleteGuestCartsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return n, nil
}
