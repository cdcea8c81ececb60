package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

const notificationListLimit = 50

// NotificationService turns order events into per-user notifications and
// serves them back to their owners.
type NotificationService struct {
	repo Repository
}

func NewNotificationService(repo Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// HandleOrderEvent writes the notifications for one order event. Events
// for orders that no longer exist are dropped without error so the
// message is not redelivered forever.
func (s *NotificationService) HandleOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	order, err := s.repo.GetOrder(ctx, ev.OrderID)
	if errors.Is(err, ErrNotFound) {
		log.Printf("WARN: dropping %s event for missing order %d", ev.Type, ev.OrderID)
		return nil
	}
	if err != nil {
		return err
	}

	customerLink := fmt.Sprintf("/orders/me/%d", order.ID)
	var notes []models.Notification

	switch ev.Type {
	case models.EventOrderCreated:
		notes = append(notes, newNotification(order.UserID, order.ID, customerLink,
			"Your order %s has been placed.", order.OrderNumber))
		for _, sellerID := range sellersOf(order) {
			notes = append(notes, newNotification(sellerID, order.ID, fmt.Sprintf("/orders/seller/my-orders/%d", order.ID),
				"New order %s contains %d of your items.", order.OrderNumber, countItemsOf(order, sellerID)))
		}

	case models.EventOrderStatusUpdated:
		notes = append(notes, newNotification(order.UserID, order.ID, customerLink,
			"Your order %s is now %s.", order.OrderNumber, ev.Status))

	case models.EventOrderItemStatusUpdated:
		name := "An item"
		for _, it := range order.Items {
			if it.ID == ev.OrderItemID {
				name = it.ProductName
				break
			}
		}
		notes = append(notes, newNotification(order.UserID, order.ID, customerLink,
			"%s in order %s is now %s.", name, order.OrderNumber, ev.Status))

	default:
		log.Printf("WARN: ignoring unknown order event type %q", ev.Type)
		return nil
	}

	return s.repo.WithTx(ctx, func(tx Repository) error {
		for i := range notes {
			if err := tx.CreateNotification(ctx, &notes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func newNotification(userID, orderID int64, link, format string, args ...any) models.Notification {
	return models.Notification{
		UserID:  userID,
		OrderID: &orderID,
		Message: fmt.Sprintf(format, args...),
		Link:    &link,
	}
}

func sellersOf(o *models.Order) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, it := range o.Items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			ids = append(ids, it.SellerID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func countItemsOf(o *models.Order, sellerID int64) int {
	n := 0
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			n++
		}
	}
	return n
}

// ListMyNotifications returns the caller's latest notifications, unread first.
func (s *NotificationService) ListMyNotifications(ctx context.Context, p auth.Principal) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, p.UserID, notificationListLimit)
}

// MarkRead marks one of the caller's notifications as read. Someone
// else's notification reads as not found.
func (s *NotificationService) MarkRead(ctx context.Context, p auth.Principal, id int64) (*models.Notification, error) {
	n, err := s.repo.GetNotification(ctx, id)
	if errors.Is(err, ErrNotFound) || (err == nil && n.UserID != p.UserID) {
		return nil, errorf(ErrNotFound, "Notification not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}
