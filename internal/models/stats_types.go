package models

import "github.com/shopspring/decimal"

// OverviewStats is the admin dashboard summary.
type OverviewStats struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalSellers  int             `json:"totalSellers"`
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"` // delivered orders only
}

// MonthlySales is one month bucket of delivered orders.
type MonthlySales struct {
	Month   int             `json:"month"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SellerStats returns KPI data for the seller dashboard.
type SellerStats struct {
	LiveProducts  int                 `json:"liveProducts"`
	OutOfStock    int                 `json:"outOfStock"`
	ItemsByStatus map[OrderStatus]int `json:"itemsByStatus"`
	Revenue       decimal.Decimal     `json:"revenue"` // delivered items only
}
