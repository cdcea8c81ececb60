package service

import (
	"context"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

// StatsService backs the admin and seller dashboards.
type StatsService struct {
	repo Repository
	now  func() time.Time
}

func NewStatsService(repo Repository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

func (s *StatsService) Overview(ctx context.Context, p auth.Principal) (*models.OverviewStats, error) {
	if !p.IsAdmin() {
		return nil, errorf(ErrForbidden, "Forbidden: Admin access required")
	}
	return s.repo.OverviewStats(ctx)
}

// MonthlySales returns twelve buckets for year, January first. Months
// without delivered orders are zero. A zero year means the current one.
func (s *StatsService) MonthlySales(ctx context.Context, p auth.Principal, year int) ([]models.MonthlySales, error) {
	if !p.IsAdmin() {
		return nil, errorf(ErrForbidden, "Forbidden: Admin access required")
	}
	if year == 0 {
		year = s.now().Year()
	}
	if year < 2000 || year > 9999 {
		return nil, errorf(ErrValidation, "invalid year %d", year)
	}

	rows, err := s.repo.MonthlySales(ctx, year)
	if err != nil {
		return nil, err
	}

	buckets := make([]models.MonthlySales, 12)
	for i := range buckets {
		buckets[i].Month = i + 1
	}
	for _, r := range rows {
		if r.Month >= 1 && r.Month <= 12 {
			buckets[r.Month-1].Orders = r.Orders
			buckets[r.Month-1].Revenue = r.Revenue
		}
	}
	return buckets, nil
}

// SellerStats summarizes the calling seller's catalog and order items.
func (s *StatsService) SellerStats(ctx context.Context, p auth.Principal) (*models.SellerStats, error) {
	if !p.HasRole(models.RoleSeller, models.RoleAdmin) {
		return nil, errorf(ErrForbidden, "Forbidden: Seller access required")
	}
	stats, err := s.repo.SellerStats(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if stats.ItemsByStatus == nil {
		stats.ItemsByStatus = map[models.OrderStatus]int{}
	}
	for status := range transitions {
		if _, ok := stats.ItemsByStatus[status]; !ok {
			stats.ItemsByStatus[status] = 0
		}
	}
	return stats, nil
}
