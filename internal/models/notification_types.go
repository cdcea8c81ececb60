package models

import "time"

// Notification is the model for the 'notifications' table. Rows are
// written by the order event consumer.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	OrderID   *int64    `json:"orderId,omitempty" db:"order_id"`
	Message   string    `json:"message" db:"message"`
	Link      *string   `json:"link,omitempty" db:"link"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
