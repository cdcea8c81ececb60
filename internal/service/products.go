package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// ProductInput is the body for creating a product.
type ProductInput struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Manufacturer  *string          `json:"manufacturer"`
	DosageForm    *string          `json:"dosageForm"`
	Strength      *string          `json:"strength"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         int              `json:"stock"`
}

// ProductPatch is a partial update. Nil fields are left alone;
// RemoveDiscount clears the discount price.
type ProductPatch struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Manufacturer   *string          `json:"manufacturer"`
	DosageForm     *string          `json:"dosageForm"`
	Strength       *string          `json:"strength"`
	Price          *decimal.Decimal `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice"`
	RemoveDiscount bool             `json:"removeDiscount"`
	Stock          *int             `json:"stock"`
}

// ProductService owns the seller catalog.
type ProductService struct {
	repo Repository
}

func NewProductService(repo Repository) *ProductService {
	return &ProductService{repo: repo}
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errorf(ErrValidation, "name is required")
	}
	if !p.Price.IsPositive() {
		return errorf(ErrValidation, "price must be greater than 0")
	}
	if p.DiscountPrice != nil {
		if p.DiscountPrice.IsNegative() {
			return errorf(ErrValidation, "discountPrice cannot be negative")
		}
		if !p.DiscountPrice.LessThan(p.Price) {
			return errorf(ErrValidation, "discountPrice must be less than price")
		}
	}
	if p.Stock < 0 {
		return errorf(ErrValidation, "stock cannot be negative")
	}
	return nil
}

// uniqueSlug derives a slug from name and appends -2, -3, ... until it is free.
func uniqueSlug(ctx context.Context, repo Repository, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "product"
	}

	candidate := base
	for n := 2; ; n++ {
		taken, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// CreateProduct adds a product owned by the caller.
func (s *ProductService) CreateProduct(ctx context.Context, p auth.Principal, in ProductInput) (*models.Product, error) {
	if !p.HasRole(models.RoleSeller, models.RoleAdmin) {
		return nil, errorf(ErrForbidden, "Forbidden: Seller access required")
	}

	product := &models.Product{
		SellerID:      p.UserID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Manufacturer:  in.Manufacturer,
		DosageForm:    in.DosageForm,
		Strength:      in.Strength,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		var err error
		if product.Slug, err = uniqueSlug(ctx, tx, product.Name); err != nil {
			return err
		}
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "Product not found")
	}
	return product, err
}

func (s *ProductService) ListMyProducts(ctx context.Context, p auth.Principal) ([]models.Product, error) {
	products, err := s.repo.ListProductsBySeller(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// ownedProduct loads id and checks the caller may change it.
func ownedProduct(ctx context.Context, repo Repository, p auth.Principal, id int64) (*models.Product, error) {
	product, err := repo.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && product.SellerID != p.UserID {
		return nil, errorf(ErrForbidden, "You can only manage your own products")
	}
	return product, nil
}

// UpdateProduct applies patch. Orders already placed keep their prices.
func (s *ProductService) UpdateProduct(ctx context.Context, p auth.Principal, id int64, patch ProductPatch) (*models.Product, error) {
	var product *models.Product
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		var err error
		product, err = ownedProduct(ctx, tx, p, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			product.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			product.Description = patch.Description
		}
		if patch.Manufacturer != nil {
			product.Manufacturer = patch.Manufacturer
		}
		if patch.DosageForm != nil {
			product.DosageForm = patch.DosageForm
		}
		if patch.Strength != nil {
			product.Strength = patch.Strength
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		if patch.RemoveDiscount {
			product.DiscountPrice = nil
		} else if patch.DiscountPrice != nil {
			product.DiscountPrice = patch.DiscountPrice
		}
		if patch.Stock != nil {
			product.Stock = *patch.Stock
		}

		if err := validateProduct(product); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product that no order refers to.
func (s *ProductService) DeleteProduct(ctx context.Context, p auth.Principal, id int64) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		if _, err := ownedProduct(ctx, tx, p, id); err != nil {
			return err
		}
		err := tx.DeleteProduct(ctx, id)
		if errors.Is(err, ErrConflict) {
			return errorf(ErrConflict, "Product has been ordered and cannot be deleted")
		}
		return err
	})
}
