package handlers

import (
	"context"

	"github.com/01moynul/medistore/internal/service"
)

// Handlers holds the services every HTTP handler calls into.
type Handlers struct {
	Users    *service.UserService
	Carts    *service.CartService
	Orders   *service.OrderService
	Products *service.ProductService
	Stats    *service.StatsService
	Notes    *service.NotificationService

	// Ping checks the backing store for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}
