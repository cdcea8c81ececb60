package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart defines the struct for the 'carts' table
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	CartID    int64     `json:"cartId" db:"cart_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLine is a cart item joined with the product it points at.
// Prices are the product's current prices, not a snapshot.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}

// LineTotal is the effective unit price times the quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the response shape for a user's cart.
// ID is nil when the user has never added anything.
type CartView struct {
	ID         *int64          `json:"id"`
	UserID     int64           `json:"userId"`
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}
