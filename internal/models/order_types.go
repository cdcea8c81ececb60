package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderAddress is the shipping snapshot taken at checkout.
// It is written once per order and never updated.
type OrderAddress struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Phone        string    `json:"phone" db:"phone"`
	AddressLine1 string    `json:"addressLine1" db:"address_line1"`
	AddressLine2 *string   `json:"addressLine2" db:"address_line2"`
	City         string    `json:"city" db:"city"`
	District     *string   `json:"district" db:"district"`
	PostalCode   *string   `json:"postalCode" db:"postal_code"`
	Label        *string   `json:"label" db:"label"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Order is the model for the 'orders' table
type Order struct {
	ID                int64           `json:"id" db:"id"`
	OrderNumber       string          `json:"orderNumber" db:"order_number"`
	UserID            int64           `json:"userId" db:"user_id"`
	ShippingAddressID int64           `json:"shippingAddressId" db:"shipping_address_id"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	DiscountAmount    decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	ShippingFee       decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	FinalAmount       decimal.Decimal `json:"finalAmount" db:"final_amount"`
	Status            OrderStatus     `json:"status" db:"status"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`

	// Joins (not columns of 'orders')
	ShippingAddress *OrderAddress `json:"shippingAddress,omitempty" db:"-"`
	Items           []OrderItem   `json:"items" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// SellerID, ProductName and UnitPrice are copied from the product at checkout.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"orderId" db:"order_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	SellerID    int64           `json:"sellerId" db:"seller_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Pagination is returned alongside paged lists.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// OrderPage is one page of orders.
type OrderPage struct {
	Data       []Order    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// OrderEvent is published after order state changes are committed.
type OrderEvent struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber,omitempty"`
	OrderItemID int64           `json:"orderItemId,omitempty"`
	UserID      int64           `json:"userId"`
	Type        string          `json:"type"` // order.created, order.status_updated, order.item_status_updated
	Status      OrderStatus     `json:"status"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	ActorID     int64           `json:"actorId,omitempty"`
	Occurred    time.Time       `json:"occurred"`
}

const (
	EventOrderCreated           = "order.created"
	EventOrderStatusUpdated     = "order.status_updated"
	EventOrderItemStatusUpdated = "order.item_status_updated"
)
