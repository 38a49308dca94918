package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CheckoutService drives the checkout saga: create, mark paid, finalize.
type CheckoutService struct {
	checkouts repositories.CheckoutRepository
	events    EventPublisher
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. events may be nil.
func NewCheckoutService(checkouts repositories.CheckoutRepository, events EventPublisher) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckoutInput is the item snapshot and shipping data of a new checkout.
type CreateCheckoutInput struct {
	Items           []models.LineItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	// TotalPrice is optional; when set it must equal the item total.
	TotalPrice float64
}

func canAccess(user *models.User, ownerID string) bool {
	return user != nil && (user.ID == ownerID || user.IsAdmin())
}

// Create opens a checkout for user. The cart is not consulted.
func (s *CheckoutService) Create(ctx context.Context, user *models.User, in CreateCheckoutInput) (*models.Checkout, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("no items in checkout: %w", apperrors.ErrInvalidRequest)
	}
	total := models.LineItemsTotal(in.Items)
	if in.TotalPrice != 0 && !models.SameAmount(in.TotalPrice, total) {
		return nil, fmt.Errorf("total price %.2f does not match items total %.2f: %w", in.TotalPrice, total, apperrors.ErrInvalidRequest)
	}

	checkout := models.NewCheckout(user.ID, in.Items, in.ShippingAddress, in.PaymentMethod, total)
	if err := s.checkouts.Create(ctx, checkout); err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}
	log.Info().Str("checkout_id", checkout.ID).Str("user_id", user.ID).Float64("total_price", total).Msg("checkout created")
	return checkout, nil
}

// Get returns a checkout visible to user. Other users' checkouts are
// reported as not found.
func (s *CheckoutService) Get(ctx context.Context, user *models.User, id string) (*models.Checkout, error) {
	checkout, err := s.checkouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(user, checkout.UserID) {
		return nil, fmt.Errorf("checkout %s not visible to caller: %w", id, apperrors.ErrNotFound)
	}
	return checkout, nil
}

// MarkPaid records the payment signal. Only "Paid" is accepted; repeating it
// is a no-op.
func (s *CheckoutService) MarkPaid(ctx context.Context, user *models.User, id, paymentStatus string, details models.PaymentDetails) (*models.Checkout, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	status, err := models.ParsePaymentStatus(paymentStatus)
	if err != nil {
		return nil, err
	}
	checkout, err := s.checkouts.MarkPaid(ctx, id, status, details, s.now())
	if err != nil {
		return nil, err
	}
	log.Info().Str("checkout_id", id).Str("payment_status", string(checkout.PaymentStatus)).Msg("checkout payment recorded")
	return checkout, nil
}

// Finalize converts a paid checkout into an order and announces it.
func (s *CheckoutService) Finalize(ctx context.Context, user *models.User, id string) (*models.Order, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	at := s.now()
	order, err := s.checkouts.Finalize(ctx, id, at)
	if err != nil {
		return nil, err
	}
	log.Info().Str("checkout_id", id).Str("order_id", order.ID).Str("user_id", order.UserID).Msg("checkout finalized")

	publish(ctx, s.events, EventOrderFinalized, OrderFinalizedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		CheckoutID:  order.CheckoutID,
		TotalPrice:  order.TotalPrice,
		FinalizedAt: at,
	})
	return order, nil
}
