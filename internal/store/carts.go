package store

import (
	"context"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
)

func (s *Store) getCart(ctx context.Context, query string, userID int64) (*models.Cart, error) {
	var c models.Cart
	err := s.q.QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) GetCartByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	return s.getCart(ctx, "SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?", userID)
}

// LockCartByUser takes a row lock on the cart. Only meaningful inside WithTx.
func (s *Store) LockCartByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	return s.getCart(ctx, "SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ? FOR UPDATE", userID)
}

func (s *Store) CreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	now := s.now()
	res, err := s.q.ExecContext(ctx, "INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)", userID, now, now)
	if err != nil {
		return nil, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Cart{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	query := `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, ` + productColumns + `
	          FROM cart_items ci
	          JOIN products p ON p.id = ci.product_id
	          WHERE ci.cart_id = ?
	          ORDER BY ci.created_at DESC, ci.id DESC`

	rows, err := s.q.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var (
			line models.CartLine
			r    productRow
		)
		dest := append([]any{
			&line.ID, &line.CartID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
		}, r.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		line.Product = r.product()
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) UpsertCartItem(ctx context.Context, cartID, productID int64, qty int) error {
	now := s.now()
	query := `INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = VALUES(updated_at)`

	_, err := s.q.ExecContext(ctx, query, cartID, productID, qty, now, now)
	return mapErr(err)
}

func (s *Store) GetCartItem(ctx context.Context, itemID int64) (*models.CartItem, error) {
	var it models.CartItem
	err := s.q.QueryRowContext(ctx,
		"SELECT id, cart_id, product_id, quantity, created_at, updated_at FROM cart_items WHERE id = ?", itemID,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, itemID int64, qty int) error {
	_, err := s.q.ExecContext(ctx, "UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?", qty, s.now(), itemID)
	return mapErr(err)
}

func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	return mustAffect(s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", itemID))
}

// ClearCartItems counts with a locking read so rows committed after the
// transaction's snapshot are seen, then deletes them.
func (s *Store) ClearCartItems(ctx context.Context, cartID int64) (service.CartCleared, error) {
	var out service.CartCleared
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = ? FOR UPDATE", cartID,
	).Scan(&out.Lines, &out.Units)
	if err != nil {
		return service.CartCleared{}, err
	}
	if _, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		return service.CartCleared{}, err
	}
	return out, nil
}
