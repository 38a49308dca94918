package models

import (
	"fmt"
	"time"

	"storefront/internal/apperrors"
)

// PaymentStatus is the payment progress of a checkout or order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// ParsePaymentStatus accepts only the known status values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending:
		return PaymentPending, nil
	case PaymentPaid:
		return PaymentPaid, nil
	default:
		return "", fmt.Errorf("unknown payment status %q: %w", s, apperrors.ErrInvalidState)
	}
}

// CheckoutState is the lifecycle position of a checkout.
type CheckoutState string

const (
	CheckoutCreated   CheckoutState = "created"
	CheckoutPaid      CheckoutState = "paid"
	CheckoutFinalized CheckoutState = "finalized"
)

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentDetails is the opaque payload reported by the payment provider.
type PaymentDetails map[string]any

func (d PaymentDetails) clone() PaymentDetails {
	if d == nil {
		return nil
	}
	out := make(PaymentDetails, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Checkout captures a frozen copy of the cart plus payment progress.
type Checkout struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user" gorm:"type:varchar(36);index;not null"`
	CheckoutItems   []LineItem      `json:"checkoutItems" gorm:"type:text;serializer:json"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"type:text;serializer:json"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(50);not null"`
	TotalPrice      float64         `json:"totalPrice" gorm:"not null"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null;default:Pending"`
	IsPaid          bool            `json:"isPaid" gorm:"not null;default:false"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails,omitempty" gorm:"type:text;serializer:json"`
	IsFinalized     bool            `json:"isFinalized" gorm:"not null;default:false"`
	FinalizedAt     *time.Time      `json:"finalizedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewCheckout builds a checkout in the created state.
func NewCheckout(userID string, items []LineItem, addr ShippingAddress, method string, total float64) *Checkout {
	return &Checkout{
		UserID:          userID,
		CheckoutItems:   cloneLineItems(items),
		ShippingAddress: addr,
		PaymentMethod:   method,
		TotalPrice:      total,
		PaymentStatus:   PaymentPending,
	}
}

// State derives the lifecycle state from the stored flags.
func (c *Checkout) State() CheckoutState {
	switch {
	case c.IsFinalized:
		return CheckoutFinalized
	case c.IsPaid:
		return CheckoutPaid
	default:
		return CheckoutCreated
	}
}

// MarkPaid applies a payment signal. Only PaymentPaid is accepted. Repeating
// the signal on a paid or finalized checkout is a no-op: the first recorded
// payment details are kept and changed is false.
func (c *Checkout) MarkPaid(status PaymentStatus, details PaymentDetails, at time.Time) (changed bool, err error) {
	if status != PaymentPaid {
		return false, fmt.Errorf("payment status %q cannot mark checkout %s paid: %w", status, c.ID, apperrors.ErrInvalidState)
	}
	switch c.State() {
	case CheckoutCreated:
		paidAt := at
		c.IsPaid = true
		c.PaymentStatus = PaymentPaid
		c.PaymentDetails = details.clone()
		c.PaidAt = &paidAt
		return true, nil
	case CheckoutPaid, CheckoutFinalized:
		return false, nil
	default:
		return false, fmt.Errorf("checkout %s in unknown state: %w", c.ID, apperrors.ErrInvalidState)
	}
}

// CanFinalize reports why the checkout cannot be finalized, or nil.
func (c *Checkout) CanFinalize() error {
	switch c.State() {
	case CheckoutPaid:
		return nil
	case CheckoutFinalized:
		return fmt.Errorf("checkout %s: %w", c.ID, apperrors.ErrAlreadyFinalized)
	case CheckoutCreated:
		return fmt.Errorf("checkout %s: %w", c.ID, apperrors.ErrNotPaid)
	default:
		return fmt.Errorf("checkout %s in unknown state: %w", c.ID, apperrors.ErrInvalidState)
	}
}

// Finalize moves a paid checkout to the terminal state.
func (c *Checkout) Finalize(at time.Time) error {
	if err := c.CanFinalize(); err != nil {
		return err
	}
	finalizedAt := at
	c.IsFinalized = true
	c.FinalizedAt = &finalizedAt
	return nil
}

// Clone returns a deep copy of the checkout.
func (c *Checkout) Clone() *Checkout {
	out := *c
	out.CheckoutItems = cloneLineItems(c.CheckoutItems)
	out.PaymentDetails = c.PaymentDetails.clone()
	out.PaidAt = cloneTime(c.PaidAt)
	out.FinalizedAt = cloneTime(c.FinalizedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
