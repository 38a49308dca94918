package models

import (
	"fmt"
	"time"

	"storefront/internal/apperrors"
)

// CartOwner identifies the owner of a cart: either a user or a guest session,
// never both.
type CartOwner struct {
	UserID  string
	GuestID string
}

func UserOwner(userID string) CartOwner   { return CartOwner{UserID: userID} }
func GuestOwner(guestID string) CartOwner { return CartOwner{GuestID: guestID} }

// Validate enforces that exactly one of UserID and GuestID is set.
func (o CartOwner) Validate() error {
	switch {
	case o.UserID != "" && o.GuestID != "":
		return fmt.Errorf("cart owner has both user and guest id: %w", apperrors.ErrInvalidRequest)
	case o.UserID == "" && o.GuestID == "":
		return fmt.Errorf("cart owner requires a user or guest id: %w", apperrors.ErrInvalidRequest)
	}
	return nil
}

func (o CartOwner) String() string {
	if o.UserID != "" {
		return "user " + o.UserID
	}
	return "guest " + o.GuestID
}

// Cart holds the line items of one owner. TotalPrice is derived and is
// recomputed by Recalculate after every mutation.
type Cart struct {
	ID         string     `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID     *string    `json:"user,omitempty" gorm:"type:varchar(36);uniqueIndex"`
	GuestID    *string    `json:"guestId,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	Products   []LineItem `json:"products" gorm:"type:text;serializer:json"`
	TotalPrice float64    `json:"totalPrice" gorm:"not null;default:0"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" gorm:"index"`
}

// NewCart returns an empty cart for owner. The caller assigns the ID.
func NewCart(owner CartOwner) *Cart {
	c := &Cart{Products: []LineItem{}}
	c.SetOwner(owner)
	return c
}

// Owner returns the owner key of the cart.
func (c *Cart) Owner() CartOwner {
	var o CartOwner
	if c.UserID != nil {
		o.UserID = *c.UserID
	}
	if c.GuestID != nil {
		o.GuestID = *c.GuestID
	}
	return o
}

// SetOwner replaces the owner, clearing the other identity.
func (c *Cart) SetOwner(owner CartOwner) {
	c.UserID, c.GuestID = nil, nil
	if owner.UserID != "" {
		id := owner.UserID
		c.UserID = &id
		return
	}
	if owner.GuestID != "" {
		id := owner.GuestID
		c.GuestID = &id
	}
}

// Recalculate sets TotalPrice to the sum of price × quantity over all items.
func (c *Cart) Recalculate() {
	if c.Products == nil {
		c.Products = []LineItem{}
	}
	c.TotalPrice = LineItemsTotal(c.Products)
}

func (c *Cart) indexOf(productID, size, color string) int {
	for i, item := range c.Products {
		if item.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// AddItem increments the quantity of the matching line by delta, or appends
// item with quantity delta when no line matches. A resulting quantity below 1
// is rejected and leaves the cart unchanged.
func (c *Cart) AddItem(item LineItem, delta int) error {
	if i := c.indexOf(item.ProductID, item.Size, item.Color); i >= 0 {
		next := c.Products[i].Quantity + delta
		if next < 1 {
			return fmt.Errorf("quantity would drop to %d: %w", next, apperrors.ErrInvalidRequest)
		}
		c.Products[i].Quantity = next
		return nil
	}
	if delta < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d: %w", delta, apperrors.ErrInvalidRequest)
	}
	item.Quantity = delta
	c.Products = append(c.Products, item)
	return nil
}

// SetQuantity sets the absolute quantity of a line; zero removes it.
func (c *Cart) SetQuantity(productID, size, color string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative: %w", apperrors.ErrInvalidRequest)
	}
	i := c.indexOf(productID, size, color)
	if i < 0 {
		return fmt.Errorf("product %s not in cart: %w", productID, apperrors.ErrNotFound)
	}
	if quantity == 0 {
		c.Products = append(c.Products[:i], c.Products[i+1:]...)
		return nil
	}
	c.Products[i].Quantity = quantity
	return nil
}

// RemoveItem deletes the line identified by (productID, size, color).
func (c *Cart) RemoveItem(productID, size, color string) error {
	return c.SetQuantity(productID, size, color, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Products = []LineItem{}
}

// Merge folds other's lines into c, summing quantities of identical lines.
func (c *Cart) Merge(other *Cart) {
	for _, item := range other.Products {
		if i := c.indexOf(item.ProductID, item.Size, item.Color); i >= 0 {
			c.Products[i].Quantity += item.Quantity
			continue
		}
		c.Products = append(c.Products, item)
	}
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Products = cloneLineItems(c.Products)
	if c.UserID != nil {
		id := *c.UserID
		out.UserID = &id
	}
	if c.GuestID != nil {
		id := *c.GuestID
		out.GuestID = &id
	}
	return &out
}
