package service

import (
	"context"
	"errors"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

// transitions is the fulfillment state machine. It applies to orders and
// to order items alike. DELIVERED and CANCELLED are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  nil,
	models.OrderStatusCancelled:  nil,
}

func validStatus(s models.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to models.OrderStatus) error {
	if !CanTransition(from, to) {
		return errorf(ErrInvalidTransition, "Cannot change status from %s to %s", from, to)
	}
	return nil
}

// progress ranks the forward path. CANCELLED is off it.
var progress = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

func parseStatus(s models.OrderStatus) error {
	if !validStatus(s) {
		return errorf(ErrValidation, "invalid status %q", s)
	}
	return nil
}

// UpdateOrderItemStatus moves one order item to status. Sellers may only
// touch their own items; admins may touch any. Afterwards the order status
// is rolled up, see rollUpStatus.
func (s *OrderService) UpdateOrderItemStatus(ctx context.Context, p auth.Principal, itemID int64, status models.OrderStatus) (*models.OrderItem, error) {
	if err := parseStatus(status); err != nil {
		return nil, err
	}

	var (
		updated *models.OrderItem
		order   *models.Order
		rolled  bool
	)
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		item, err := tx.GetOrderItem(ctx, itemID)
		if errors.Is(err, ErrNotFound) {
			return errorf(ErrNotFound, "Order item not found")
		}
		if err != nil {
			return err
		}
		if !canUpdateItem(p, item) {
			return errorf(ErrForbidden, "You can only update your own order items")
		}

		// Order row first, then the item: same lock order as UpdateOrderStatus.
		order, err = tx.LockOrder(ctx, item.OrderID)
		if err != nil {
			return err
		}
		item, err = tx.LockOrderItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := checkTransition(item.Status, status); err != nil {
			return err
		}

		now := s.now()
		if err := tx.UpdateOrderItemStatus(ctx, item.ID, status, now); err != nil {
			return err
		}
		item.Status = status
		item.UpdatedAt = now
		updated = item

		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		if next, ok := rollUpStatus(order.Status, items); ok {
			if err := tx.UpdateOrderStatus(ctx, order.ID, next, now); err != nil {
				return err
			}
			order.Status = next
			rolled = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderItemID: updated.ID,
		UserID:      order.UserID,
		Type:        models.EventOrderItemStatusUpdated,
		Status:      updated.Status,
		FinalAmount: order.FinalAmount,
		ActorID:     p.UserID,
	})
	if rolled {
		s.publishOrderStatus(ctx, order, p.UserID)
	}
	return updated, nil
}

// rollUpStatus returns the status the order should move to given its
// items. Cancelled items are ignored unless every item is cancelled, in
// which case the order is cancelled too. Otherwise the order follows when
// all remaining items share a status further along the forward path, even
// if that skips steps the order itself never took.
func rollUpStatus(current models.OrderStatus, items []models.OrderItem) (models.OrderStatus, bool) {
	if len(items) == 0 {
		return "", false
	}
	var shared models.OrderStatus
	for _, it := range items {
		if it.Status == models.OrderStatusCancelled {
			continue
		}
		if shared != "" && it.Status != shared {
			return "", false
		}
		shared = it.Status
	}

	if shared == "" {
		return models.OrderStatusCancelled, CanTransition(current, models.OrderStatusCancelled)
	}
	from, ok := progress[current]
	if !ok {
		return "", false
	}
	return shared, progress[shared] > from
}

// fulfilmentStarted reports whether a seller has moved any item past PENDING.
func fulfilmentStarted(items []models.OrderItem) bool {
	for _, it := range items {
		if it.Status != models.OrderStatusPending && it.Status != models.OrderStatusCancelled {
			return true
		}
	}
	return false
}

// UpdateOrderStatus is the admin override for a whole order. Items that
// may legally follow are moved along with it.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, p auth.Principal, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !p.IsAdmin() {
		return nil, errorf(ErrForbidden, "Forbidden: Admin access required")
	}
	if err := parseStatus(status); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		order, err := tx.LockOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) {
			return errorf(ErrNotFound, "Order not found")
		}
		if err != nil {
			return err
		}
		return s.applyOrderStatus(ctx, tx, order, status)
	})
	if err != nil {
		return nil, err
	}
	return s.afterOrderStatus(ctx, orderID, p.UserID)
}

// CancelMyOrder lets a customer cancel their own order while it is PENDING
// and no seller has started on any of its items.
func (s *OrderService) CancelMyOrder(ctx context.Context, p auth.Principal, orderID int64) (*models.Order, error) {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		order, err := tx.LockOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) || (err == nil && order.UserID != p.UserID) {
			return errorf(ErrNotFound, "Order not found")
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return errorf(ErrInvalidTransition, "Only pending orders can be cancelled")
		}
		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		if fulfilmentStarted(items) {
			return errorf(ErrInvalidTransition, "Order is already being fulfilled and can no longer be cancelled")
		}
		return s.applyOrderStatus(ctx, tx, order, models.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return s.afterOrderStatus(ctx, orderID, p.UserID)
}

// ExpirePendingOrders cancels every order still PENDING after ttl and
// returns how many were cancelled. Orders that moved on since the scan, or
// that a seller has started fulfilling, are skipped.
func (s *OrderService) ExpirePendingOrders(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.repo.ListStalePendingOrders(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		var changed bool
		err := s.repo.WithTx(ctx, func(tx Repository) error {
			order, err := tx.LockOrder(ctx, id)
			if err != nil {
				return err
			}
			if order.Status != models.OrderStatusPending {
				return nil
			}
			items, err := tx.ListOrderItems(ctx, order.ID)
			if err != nil {
				return err
			}
			if fulfilmentStarted(items) {
				return nil
			}
			changed = true
			return s.applyOrderStatus(ctx, tx, order, models.OrderStatusCancelled)
		})
		if err != nil {
			return cancelled, err
		}
		if !changed {
			continue
		}
		cancelled++
		if _, err := s.afterOrderStatus(ctx, id, 0); err != nil {
			return cancelled, err
		}
	}
	return cancelled, nil
}

// applyOrderStatus moves a locked order to status and drags along every
// item for which the same move is legal.
func (s *OrderService) applyOrderStatus(ctx context.Context, tx Repository, order *models.Order, status models.OrderStatus) error {
	if err := checkTransition(order.Status, status); err != nil {
		return err
	}

	now := s.now()
	if err := tx.UpdateOrderStatus(ctx, order.ID, status, now); err != nil {
		return err
	}

	items, err := tx.ListOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !CanTransition(it.Status, status) {
			continue
		}
		if err := tx.UpdateOrderItemStatus(ctx, it.ID, status, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) afterOrderStatus(ctx context.Context, orderID, actorID int64) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishOrderStatus(ctx, order, actorID)
	return order, nil
}

func (s *OrderService) publishOrderStatus(ctx context.Context, order *models.Order, actorID int64) {
	s.publish(ctx, models.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Type:        models.EventOrderStatusUpdated,
		Status:      order.Status,
		FinalAmount: order.FinalAmount,
		ActorID:     actorID,
	})
}
