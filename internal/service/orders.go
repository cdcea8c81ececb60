package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// OrderService runs checkout, order reads and status transitions.
type OrderService struct {
	repo   Repository
	events EventPublisher
	now    func() time.Time
}

// NewOrderService wires the service. A nil publisher disables events.
func NewOrderService(repo Repository, events EventPublisher) *OrderService {
	if events == nil {
		events = nopPublisher{}
	}
	return &OrderService{repo: repo, events: events, now: time.Now}
}

// publish sends ev after a commit. Failures are only logged; the write
// they describe has already happened.
func (s *OrderService) publish(ctx context.Context, ev models.OrderEvent) {
	if ev.Occurred.IsZero() {
		ev.Occurred = s.now()
	}
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		log.Printf("WARN: failed to publish %s for order %d: %v", ev.Type, ev.OrderID, err)
	}
}

// GetMyOrders lists the caller's orders, newest first.
func (s *OrderService) GetMyOrders(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, filterItems(p, o))
	}
	return out, nil
}

// GetMyOrderByID returns one of the caller's orders. Someone else's order
// is reported as not found.
func (s *OrderService) GetMyOrderByID(ctx context.Context, p auth.Principal, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) || (err == nil && order.UserID != p.UserID) {
		return nil, errorf(ErrNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}
	view := filterItems(p, *order)
	return &view, nil
}

// SellerOrderQuery is the paging input of GetSellerOrders.
type SellerOrderQuery struct {
	Page   int
	Limit  int
	Status models.OrderStatus
}

func (q SellerOrderQuery) normalize() (SellerOrderQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.Status != "" && !validStatus(q.Status) {
		return q, errorf(ErrValidation, "invalid status %q", q.Status)
	}
	return q, nil
}

// GetSellerOrders pages through the orders holding at least one of the
// seller's items. Each order only carries that seller's items. Admins see
// every order in full.
func (s *OrderService) GetSellerOrders(ctx context.Context, p auth.Principal, q SellerOrderQuery) (*models.OrderPage, error) {
	if !p.HasRole(models.RoleSeller, models.RoleAdmin) {
		return nil, errorf(ErrForbidden, "Forbidden: Seller access required")
	}
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}

	filter := SellerOrderFilter{
		SellerID: p.UserID,
		Status:   q.Status,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	}
	if p.IsAdmin() {
		filter.SellerID = 0
	}

	orders, total, err := s.repo.ListOrdersForSeller(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &models.OrderPage{
		Data: make([]models.Order, 0, len(orders)),
		Pagination: models.Pagination{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: (total + q.Limit - 1) / q.Limit,
		},
	}
	for _, o := range orders {
		if view, ok := sellerView(p, o); ok {
			page.Data = append(page.Data, view)
		}
	}
	return page, nil
}

// GetSellerOrder returns one order filtered to the seller's items.
func (s *OrderService) GetSellerOrder(ctx context.Context, p auth.Principal, orderID int64) (*models.Order, error) {
	if !p.HasRole(models.RoleSeller, models.RoleAdmin) {
		return nil, errorf(ErrForbidden, "Forbidden: Seller access required")
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}

	view, ok := sellerView(p, *order)
	if !ok {
		return nil, errorf(ErrNotFound, "Order not found")
	}
	return &view, nil
}

// GetOrderByID is the admin's unfiltered view of any order.
func (s *OrderService) GetOrderByID(ctx context.Context, p auth.Principal, orderID int64) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, errorf(ErrForbidden, "Forbidden: Admin access required")
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "Order not found")
	}
	return order, err
}
