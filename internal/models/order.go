package models

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperrors"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// ParseOrderStatus maps a status string, case-insensitively, to a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q: %w", s, apperrors.ErrInvalidRequest)
}

// Order is the durable record of a finalized checkout. It copies everything it
// needs and keeps no link that would cascade from the checkout.
type Order struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user" gorm:"type:varchar(36);index;not null"`
	CheckoutID      string          `json:"checkout" gorm:"type:varchar(36);uniqueIndex;not null"`
	OrderItems      []LineItem      `json:"orderItems" gorm:"type:text;serializer:json"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"type:text;serializer:json"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(50);not null"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails,omitempty" gorm:"type:text;serializer:json"`
	TotalPrice      float64         `json:"totalPrice" gorm:"not null"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:Processing"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrderFromCheckout copies a checkout into a new, undelivered, paid order.
func NewOrderFromCheckout(c *Checkout) *Order {
	return &Order{
		UserID:          c.UserID,
		CheckoutID:      c.ID,
		OrderItems:      cloneLineItems(c.CheckoutItems),
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
		PaymentDetails:  c.PaymentDetails.clone(),
		TotalPrice:      c.TotalPrice,
		IsPaid:          true,
		PaidAt:          cloneTime(c.PaidAt),
		PaymentStatus:   PaymentPaid,
		IsDelivered:     false,
		Status:          OrderProcessing,
	}
}

// SetStatus changes the fulfilment status. Delivered stamps the delivery time.
func (o *Order) SetStatus(status OrderStatus, at time.Time) {
	o.Status = status
	if status == OrderDelivered {
		if !o.IsDelivered {
			deliveredAt := at
			o.DeliveredAt = &deliveredAt
		}
		o.IsDelivered = true
		return
	}
	o.IsDelivered = false
	o.DeliveredAt = nil
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	out := *o
	out.OrderItems = cloneLineItems(o.OrderItems)
	out.PaymentDetails = o.PaymentDetails.clone()
	out.PaidAt = cloneTime(o.PaidAt)
	out.DeliveredAt = cloneTime(o.DeliveredAt)
	return &out
}
