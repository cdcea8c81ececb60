package service

import (
	"context"
	"time"

	"github.com/01moynul/medistore/internal/models"
)

// Repository is the persistence contract the services run against.
// Lookups return ErrNotFound when the row does not exist; unique or
// foreign-key violations surface as ErrConflict.
type Repository interface {
	// WithTx runs fn inside one transaction. Returning an error from fn
	// rolls back every write made through the tx Repository.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	UserRepository
	ProductRepository
	CartRepository
	OrderRepository
	StatsRepository
	NotificationRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id int64, status string) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type CartRepository interface {
	GetCartByUser(ctx context.Context, userID int64) (*models.Cart, error)
	// LockCartByUser reads the cart row and holds a write lock on it until
	// the surrounding transaction ends.
	LockCartByUser(ctx context.Context, userID int64) (*models.Cart, error)
	CreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error)
	// UpsertCartItem inserts the (cart, product) row or adds qty to it.
	UpsertCartItem(ctx context.Context, cartID, productID int64, qty int) error
	GetCartItem(ctx context.Context, itemID int64) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, itemID int64, qty int) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	// ClearCartItems deletes every item of the cart and reports what went.
	ClearCartItems(ctx context.Context, cartID int64) (CartCleared, error)
}

// CartCleared counts the lines and units removed by ClearCartItems.
type CartCleared struct {
	Lines int64
	Units int64
}

// SellerOrderFilter selects orders containing at least one item of SellerID.
// SellerID 0 selects every order.
type SellerOrderFilter struct {
	SellerID int64
	Status   models.OrderStatus
	Limit    int
	Offset   int
}

type OrderRepository interface {
	CreateOrderAddress(ctx context.Context, a *models.OrderAddress) error
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, orderID int64, items []models.OrderItem) error

	// GetOrder returns the order with its address and all items.
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	// LockOrder returns the bare order row under a write lock.
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	// ListOrdersForSeller returns full orders (every item) and the total match count.
	ListOrdersForSeller(ctx context.Context, f SellerOrderFilter) ([]models.Order, int, error)
	ListStalePendingOrders(ctx context.Context, createdBefore time.Time) ([]int64, error)

	GetOrderItem(ctx context.Context, id int64) (*models.OrderItem, error)
	// LockOrderItem returns the item row under a write lock.
	LockOrderItem(ctx context.Context, id int64) (*models.OrderItem, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)

	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error
	UpdateOrderItemStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error
}

type StatsRepository interface {
	OverviewStats(ctx context.Context) (*models.OverviewStats, error)
	MonthlySales(ctx context.Context, year int) ([]models.MonthlySales, error)
	SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id int64) (*models.Notification, error)
	// ListNotifications returns unread rows first, then newest first.
	ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

// EventPublisher receives order events after their transaction committed.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }
