package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
)

const orderColumns = `o.id, o.order_number, o.user_id, o.shipping_address_id, o.total_amount, o.discount_amount,
	o.shipping_fee, o.final_amount, o.status, o.created_at, o.updated_at`

const addressColumns = `a.id, a.full_name, a.phone, a.address_line1, a.address_line2, a.city, a.district,
	a.postal_code, a.label, a.created_at`

const orderItemColumns = `id, order_id, product_id, seller_id, product_name, quantity, unit_price, subtotal,
	status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func orderDest(o *models.Order) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.UserID, &o.ShippingAddressID, &o.TotalAmount, &o.DiscountAmount,
		&o.ShippingFee, &o.FinalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	}
}

// addressRow holds the nullable address columns while scanning.
type addressRow struct {
	a          models.OrderAddress
	line2      sql.NullString
	district   sql.NullString
	postalCode sql.NullString
	label      sql.NullString
}

func (r *addressRow) dest() []any {
	return []any{
		&r.a.ID, &r.a.FullName, &r.a.Phone, &r.a.AddressLine1, &r.line2, &r.a.City, &r.district,
		&r.postalCode, &r.label, &r.a.CreatedAt,
	}
}

func (r *addressRow) address() *models.OrderAddress {
	a := r.a
	a.AddressLine2 = nullString(r.line2)
	a.District = nullString(r.district)
	a.PostalCode = nullString(r.postalCode)
	a.Label = nullString(r.label)
	return &a
}

func scanOrderWithAddress(sc scanner) (models.Order, error) {
	var (
		o    models.Order
		addr addressRow
	)
	if err := sc.Scan(append(orderDest(&o), addr.dest()...)...); err != nil {
		return o, err
	}
	o.ShippingAddress = addr.address()
	return o, nil
}

func scanOrderItem(sc scanner) (models.OrderItem, error) {
	var it models.OrderItem
	err := sc.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.ProductName, &it.Quantity,
		&it.UnitPrice, &it.Subtotal, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (s *Store) CreateOrderAddress(ctx context.Context, a *models.OrderAddress) error {
	now := s.now()
	query := `INSERT INTO order_addresses (full_name, phone, address_line1, address_line2, city, district,
	              postal_code, label, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.q.ExecContext(ctx, query,
		a.FullName, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.District, a.PostalCode, a.Label, now)
	if err != nil {
		return mapErr(err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	a.CreatedAt = now
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	now := s.now()
	query := `INSERT INTO orders (order_number, user_id, shipping_address_id, total_amount, discount_amount,
	              shipping_fee, final_amount, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.q.ExecContext(ctx, query,
		o.OrderNumber, o.UserID, o.ShippingAddressID, o.TotalAmount, o.DiscountAmount,
		o.ShippingFee, o.FinalAmount, o.Status, now, now)
	if err != nil {
		return mapErr(err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// CreateOrderItems inserts the items one row at a time so each gets its id.
func (s *Store) CreateOrderItems(ctx context.Context, orderID int64, items []models.OrderItem) error {
	now := s.now()
	query := `INSERT INTO order_items (order_id, product_id, seller_id, product_name, quantity, unit_price,
	              subtotal, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i := range items {
		it := &items[i]
		res, err := s.q.ExecContext(ctx, query,
			orderID, it.ProductID, it.SellerID, it.ProductName, it.Quantity, it.UnitPrice,
			it.Subtotal, it.Status, now, now)
		if err != nil {
			return mapErr(err)
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		it.OrderID = orderID
		it.CreatedAt, it.UpdatedAt = now, now
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	query := "SELECT " + orderColumns + ", " + addressColumns + `
	          FROM orders o
	          JOIN order_addresses a ON a.id = o.shipping_address_id
	          WHERE o.id = ?`

	o, err := scanOrderWithAddress(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	if o.Items, err = s.ListOrderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = ? FOR UPDATE", id).Scan(orderDest(&o)...)
	if err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// listOrders runs an order+address query and attaches every order's items.
func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrderWithAddress(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, s.attachItems(ctx, orders)
}

func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]any, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	query := fmt.Sprintf("SELECT %s FROM order_items WHERE order_id IN (%s) ORDER BY id", orderItemColumns, placeholders(len(ids)))
	rows, err := s.q.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := "SELECT " + orderColumns + ", " + addressColumns + `
	          FROM orders o
	          JOIN order_addresses a ON a.id = o.shipping_address_id
	          WHERE o.user_id = ?
	          ORDER BY o.created_at DESC, o.id DESC`
	return s.listOrders(ctx, query, userID)
}

func (s *Store) ListOrdersForSeller(ctx context.Context, f service.SellerOrderFilter) ([]models.Order, int, error) {
	where := " WHERE 1 = 1"
	var args []any
	if f.SellerID != 0 {
		where += " AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.seller_id = ?)"
		args = append(args, f.SellerID)
	}
	if f.Status != "" {
		where += " AND o.status = ?"
		args = append(args, f.Status)
	}

	var total int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + ", " + addressColumns + `
	          FROM orders o
	          JOIN order_addresses a ON a.id = o.shipping_address_id` + where + `
	          ORDER BY o.created_at DESC, o.id DESC
	          LIMIT ? OFFSET ?`
	orders, err := s.listOrders(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *Store) ListStalePendingOrders(ctx context.Context, createdBefore time.Time) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id FROM orders WHERE status = ? AND created_at < ? ORDER BY id",
		models.OrderStatusPending, createdBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) GetOrderItem(ctx context.Context, id int64) (*models.OrderItem, error) {
	it, err := scanOrderItem(s.q.QueryRowContext(ctx, "SELECT "+orderItemColumns+" FROM order_items WHERE id = ?", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

func (s *Store) LockOrderItem(ctx context.Context, id int64) (*models.OrderItem, error) {
	it, err := scanOrderItem(s.q.QueryRowContext(ctx, "SELECT "+orderItemColumns+" FROM order_items WHERE id = ? FOR UPDATE", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+orderItemColumns+" FROM order_items WHERE order_id = ? ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error {
	_, err := s.q.ExecContext(ctx, "UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", status, at, id)
	return mapErr(err)
}

func (s *Store) UpdateOrderItemStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error {
	_, err := s.q.ExecContext(ctx, "UPDATE order_items SET status = ?, updated_at = ? WHERE id = ?", status, at, id)
	return mapErr(err)
}
