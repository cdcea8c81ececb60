package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
// Nullable columns are pointers so they serialize cleanly to JSON.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	SellerID    int64   `json:"sellerId" db:"seller_id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description *string `json:"description,omitempty" db:"description"`

	Manufacturer *string `json:"manufacturer,omitempty" db:"manufacturer"`
	DosageForm   *string `json:"dosageForm,omitempty" db:"dosage_form"`
	Strength     *string `json:"strength,omitempty" db:"strength"`

	// --- Pricing & Stock ---
	Price         decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice" db:"discount_price"`
	Stock         int              `json:"stock" db:"stock"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice is the discount price when one is set, else the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.DiscountPrice)
}

func EffectivePrice(price decimal.Decimal, discountPrice *decimal.Decimal) decimal.Decimal {
	if discountPrice != nil {
		return *discountPrice
	}
	return price
}
