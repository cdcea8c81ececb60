package service

import (
	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

// canSeeItem reports whether p may see item of order o: the seller who owns
// the item, the customer who placed the order, or an admin.
func canSeeItem(p auth.Principal, o *models.Order, item *models.OrderItem) bool {
	switch {
	case p.IsAdmin():
		return true
	case o.UserID == p.UserID:
		return true
	case p.IsSeller() && item.SellerID == p.UserID:
		return true
	}
	return false
}

// canUpdateItem reports whether p may move item through the status machine.
// Customers never can, even on their own orders.
func canUpdateItem(p auth.Principal, item *models.OrderItem) bool {
	if p.IsAdmin() {
		return true
	}
	return p.IsSeller() && item.SellerID == p.UserID
}

// sellerView returns a copy of o whose item list only holds what p may see
// as a seller, plus whether anything was left. Admins get the full order.
func sellerView(p auth.Principal, o models.Order) (models.Order, bool) {
	if p.IsAdmin() {
		return o, true
	}

	visible := make([]models.OrderItem, 0, len(o.Items))
	for i := range o.Items {
		if o.Items[i].SellerID == p.UserID && p.IsSeller() {
			visible = append(visible, o.Items[i])
		}
	}
	o.Items = visible
	return o, len(visible) > 0
}

// filterItems drops every item p may not see.
func filterItems(p auth.Principal, o models.Order) models.Order {
	visible := make([]models.OrderItem, 0, len(o.Items))
	for i := range o.Items {
		if canSeeItem(p, &o, &o.Items[i]) {
			visible = append(visible, o.Items[i])
		}
	}
	o.Items = visible
	return o
}
