package store

import (
	"context"
	"database/sql"

	"github.com/01moynul/medistore/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.seller_id, p.name, p.slug, p.description, p.manufacturer, p.dosage_form,
	p.strength, p.price, p.discount_price, p.stock, p.created_at, p.updated_at`

// productRow holds the nullable columns of a product while it is scanned.
type productRow struct {
	p            models.Product
	description  sql.NullString
	manufacturer sql.NullString
	dosageForm   sql.NullString
	strength     sql.NullString
	discount     decimal.NullDecimal
}

// dest lists scan targets in productColumns order.
func (r *productRow) dest() []any {
	return []any{
		&r.p.ID, &r.p.SellerID, &r.p.Name, &r.p.Slug, &r.description, &r.manufacturer, &r.dosageForm,
		&r.strength, &r.p.Price, &r.discount, &r.p.Stock, &r.p.CreatedAt, &r.p.UpdatedAt,
	}
}

func (r *productRow) product() models.Product {
	p := r.p
	p.Description = nullString(r.description)
	p.Manufacturer = nullString(r.manufacturer)
	p.DosageForm = nullString(r.dosageForm)
	p.Strength = nullString(r.strength)
	if r.discount.Valid {
		d := r.discount.Decimal
		p.DiscountPrice = &d
	}
	return p
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := s.now()
	query := `INSERT INTO products (seller_id, name, slug, description, manufacturer, dosage_form, strength,
	              price, discount_price, stock, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.q.ExecContext(ctx, query,
		p.SellerID, p.Name, p.Slug, p.Description, p.Manufacturer, p.DosageForm, p.Strength,
		p.Price, p.DiscountPrice, p.Stock, now, now,
	)
	if err != nil {
		return mapErr(err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var r productRow
	err := s.q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ?", id).Scan(r.dest()...)
	if err != nil {
		return nil, mapErr(err)
	}
	p := r.product()
	return &p, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE slug = ?)", slug).Scan(&exists)
	return exists, err
}

func (s *Store) ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products p WHERE p.seller_id = ? ORDER BY p.created_at DESC, p.id DESC"
	rows, err := s.q.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var r productRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		products = append(products, r.product())
	}
	return products, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = s.now()
	query := `UPDATE products
	          SET name = ?, description = ?, manufacturer = ?, dosage_form = ?, strength = ?,
	              price = ?, discount_price = ?, stock = ?, updated_at = ?
	          WHERE id = ?`

	_, err := s.q.ExecContext(ctx, query,
		p.Name, p.Description, p.Manufacturer, p.DosageForm, p.Strength,
		p.Price, p.DiscountPrice, p.Stock, p.UpdatedAt, p.ID,
	)
	return mapErr(err)
}

// DeleteProduct fails with ErrConflict while order items still point at it.
// Cart items go with it through ON DELETE CASCADE.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return mustAffect(s.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id))
}
