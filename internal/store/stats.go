package store

import (
	"context"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/shopspring/decimal"
)

func (s *Store) OverviewStats(ctx context.Context) (*models.OverviewStats, error) {
	var stats models.OverviewStats
	query := `SELECT
	              (SELECT COUNT(*) FROM users),
	              (SELECT COUNT(*) FROM users WHERE role = ?),
	              (SELECT COUNT(*) FROM products),
	              (SELECT COUNT(*) FROM orders),
	              (SELECT COALESCE(SUM(final_amount), 0) FROM orders WHERE status = ?)`

	err := s.q.QueryRowContext(ctx, query, models.RoleSeller, models.OrderStatusDelivered).Scan(
		&stats.TotalUsers,
		&stats.TotalSellers,
		&stats.TotalProducts,
		&stats.TotalOrders,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MonthlySales returns only months that had delivered orders.
func (s *Store) MonthlySales(ctx context.Context, year int) ([]models.MonthlySales, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := `SELECT MONTH(created_at), COUNT(*), COALESCE(SUM(final_amount), 0)
	          FROM orders
	          WHERE status = ? AND created_at >= ? AND created_at < ?
	          GROUP BY MONTH(created_at)
	          ORDER BY MONTH(created_at)`

	rows, err := s.q.QueryContext(ctx, query, models.OrderStatusDelivered, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlySales
	for rows.Next() {
		var m models.MonthlySales
		if err := rows.Scan(&m.Month, &m.Orders, &m.Revenue); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SellerStats(ctx context.Context, sellerID int64) (*models.SellerStats, error) {
	stats := &models.SellerStats{ItemsByStatus: map[models.OrderStatus]int{}}

	// 1. --- Catalog ---
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(stock > 0), 0), COALESCE(SUM(stock = 0), 0) FROM products WHERE seller_id = ?",
		sellerID,
	).Scan(&stats.LiveProducts, &stats.OutOfStock)
	if err != nil {
		return nil, err
	}

	// 2. --- Order items by status, revenue from delivered ones ---
	rows, err := s.q.QueryContext(ctx,
		"SELECT status, COUNT(*), COALESCE(SUM(subtotal), 0) FROM order_items WHERE seller_id = ? GROUP BY status",
		sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status   models.OrderStatus
			count    int
			subtotal decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &subtotal); err != nil {
			return nil, err
		}
		stats.ItemsByStatus[status] = count
		if status == models.OrderStatusDelivered {
			stats.Revenue = subtotal
		}
	}
	return stats, rows.Err()
}
