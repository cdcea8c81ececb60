package service

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressInput is the shipping address supplied at checkout.
type AddressInput struct {
	FullName     string  `json:"fullName" validate:"notblank,max=255"`
	Phone        string  `json:"phone" validate:"notblank,max=32"`
	AddressLine1 string  `json:"addressLine1" validate:"notblank,max=255"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"notblank,max=100"`
	District     *string `json:"district" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postalCode" validate:"omitempty,max=20"`
	Label        *string `json:"label" validate:"omitempty,max=50"`
}

// CheckoutInput is the body of POST /orders/checkout.
type CheckoutInput struct {
	Address        AddressInput     `json:"address"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	ShippingFee    *decimal.Decimal `json:"shippingFee"`
}

func (a AddressInput) snapshot() *models.OrderAddress {
	return &models.OrderAddress{
		FullName:     strings.TrimSpace(a.FullName),
		Phone:        strings.TrimSpace(a.Phone),
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		AddressLine2: nullIfBlank(a.AddressLine2),
		City:         strings.TrimSpace(a.City),
		District:     nullIfBlank(a.District),
		PostalCode:   nullIfBlank(a.PostalCode),
		Label:        nullIfBlank(a.Label),
	}
}

func nullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cartUnits(lines []models.CartLine) int64 {
	var n int64
	for _, l := range lines {
		n += int64(l.Quantity)
	}
	return n
}

func newOrderNumber() string {
	return "MS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Checkout turns the caller's cart into a PENDING order in a single
// transaction: address snapshot, order row, priced items, cart cleared.
func (s *OrderService) Checkout(ctx context.Context, p auth.Principal, in CheckoutInput) (*models.Order, error) {
	discount := decimal.Zero
	if in.DiscountAmount != nil {
		discount = *in.DiscountAmount
	}
	shipping := decimal.Zero
	if in.ShippingFee != nil {
		shipping = *in.ShippingFee
	}
	if discount.IsNegative() {
		return nil, errorf(ErrValidation, "discountAmount cannot be negative")
	}
	if shipping.IsNegative() {
		return nil, errorf(ErrValidation, "shippingFee cannot be negative")
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		// 1. --- Lock the cart so concurrent checkouts of this user queue up ---
		cart, err := tx.LockCartByUser(ctx, p.UserID)
		if errors.Is(err, ErrNotFound) {
			return errorf(ErrEmptyCart, "Cart is empty")
		}
		if err != nil {
			return err
		}

		lines, err := tx.ListCartLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errorf(ErrEmptyCart, "Cart is empty")
		}

		// 2. --- Price the snapshot ---
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			unit := line.Product.EffectivePrice()
			subtotal := line.LineTotal()
			total = total.Add(subtotal)
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				SellerID:    line.Product.SellerID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unit,
				Subtotal:    subtotal,
				Status:      models.OrderStatusPending,
			})
		}

		final := total.Sub(discount).Add(shipping)
		if final.IsNegative() {
			return errorf(ErrInvalidAmount, "Invalid final amount")
		}

		if err := validateInput(in); err != nil {
			return err
		}

		// 3. --- Write address, order and items ---
		addr := in.Address.snapshot()
		if err := tx.CreateOrderAddress(ctx, addr); err != nil {
			return err
		}

		order := &models.Order{
			OrderNumber:       newOrderNumber(),
			UserID:            p.UserID,
			ShippingAddressID: addr.ID,
			TotalAmount:       total,
			DiscountAmount:    discount,
			ShippingFee:       shipping,
			FinalAmount:       final,
			Status:            models.OrderStatusPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.CreateOrderItems(ctx, order.ID, items); err != nil {
			return err
		}

		// 4. --- Clear exactly what was ordered ---
		cleared, err := tx.ClearCartItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if cleared.Lines != int64(len(lines)) || cleared.Units != cartUnits(lines) {
			return errorf(ErrCartChanged, "Cart changed during checkout, please try again")
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Type:        models.EventOrderCreated,
		Status:      order.Status,
		FinalAmount: order.FinalAmount,
		ActorID:     p.UserID,
	})
	return order, nil
}
