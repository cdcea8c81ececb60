package service

import (
	"context"
	"errors"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
	"github.com/shopspring/decimal"
)

// CartService manages the per-user cart. A cart row is created lazily on
// the first add and survives being emptied.
type CartService struct {
	repo Repository
}

func NewCartService(repo Repository) *CartService {
	return &CartService{repo: repo}
}

// GetOrCreateCart returns the user's cart, creating an empty one if needed.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	return getOrCreateCart(ctx, s.repo, userID)
}

func getOrCreateCart(ctx context.Context, repo Repository, userID int64) (*models.Cart, error) {
	cart, err := repo.GetCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart, err = repo.CreateCart(ctx, userID)
	if errors.Is(err, ErrConflict) {
		// Another request created it first.
		return repo.GetCartByUser(ctx, userID)
	}
	return cart, err
}

// AddToCart adds qty of the product, incrementing an existing line.
func (s *CartService) AddToCart(ctx context.Context, p auth.Principal, productID int64, qty int) (*models.CartView, error) {
	if productID <= 0 {
		return nil, errorf(ErrValidation, "productId is required")
	}
	if qty < 1 {
		return nil, errorf(ErrValidation, "quantity must be at least 1")
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errorf(ErrNotFound, "Product not found")
			}
			return err
		}

		if _, err := getOrCreateCart(ctx, tx, p.UserID); err != nil {
			return err
		}
		// Queue behind a checkout holding the same cart.
		cart, err := tx.LockCartByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		return tx.UpsertCartItem(ctx, cart.ID, productID, qty)
	})
	if err != nil {
		return nil, err
	}

	return s.GetMyCart(ctx, p)
}

// GetMyCart returns the caller's cart. A user without a cart row gets an
// empty view with a nil ID rather than an error.
func (s *CartService) GetMyCart(ctx context.Context, p auth.Principal) (*models.CartView, error) {
	return cartView(ctx, s.repo, p.UserID)
}

func cartView(ctx context.Context, repo Repository, userID int64) (*models.CartView, error) {
	view := &models.CartView{
		UserID:   userID,
		Items:    []models.CartLine{},
		Subtotal: decimal.Zero,
	}

	cart, err := repo.GetCartByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.ID = &cart.ID

	lines, err := repo.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		view.TotalItems += line.Quantity
		view.Subtotal = view.Subtotal.Add(line.LineTotal())
	}
	if lines != nil {
		view.Items = lines
	}
	return view, nil
}

// UpdateCartItemQuantity overwrites the quantity of one of the caller's items.
func (s *CartService) UpdateCartItemQuantity(ctx context.Context, p auth.Principal, itemID int64, qty int) (*models.CartView, error) {
	if qty < 1 {
		return nil, errorf(ErrValidation, "quantity must be at least 1")
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		item, err := ownCartItem(ctx, tx, p.UserID, itemID)
		if err != nil {
			return err
		}
		return tx.SetCartItemQuantity(ctx, item.ID, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMyCart(ctx, p)
}

// RemoveCartItem deletes one of the caller's items.
func (s *CartService) RemoveCartItem(ctx context.Context, p auth.Principal, itemID int64) (*models.CartView, error) {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		item, err := ownCartItem(ctx, tx, p.UserID, itemID)
		if err != nil {
			return err
		}
		return tx.DeleteCartItem(ctx, item.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMyCart(ctx, p)
}

// ClearMyCart empties the caller's cart. The cart row itself is kept.
func (s *CartService) ClearMyCart(ctx context.Context, p auth.Principal) (*models.CartView, error) {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		cart, err := tx.LockCartByUser(ctx, p.UserID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.ClearCartItems(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetMyCart(ctx, p)
}

// ownCartItem locks userID's cart and checks itemID sits in it. A missing
// cart, a missing item and someone else's item all look the same. Call it
// inside WithTx.
func ownCartItem(ctx context.Context, repo Repository, userID, itemID int64) (*models.CartItem, error) {
	cart, err := repo.LockCartByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "Cart not found")
	}
	if err != nil {
		return nil, err
	}

	item, err := repo.GetCartItem(ctx, itemID)
	if errors.Is(err, ErrNotFound) || (err == nil && item.CartID != cart.ID) {
		return nil, errorf(ErrNotFound, "Cart item not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
