package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

//
// --- Seller Dashboard Stats ---
//

// GetSellerStats returns order-item counts per status for the caller.
// GET /seller/dashboard-stats
func (h *Handlers) GetSellerStats(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	stats, err := h.Stats.SellerStats(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Seller stats retrieved successfully", stats)
}

//
// --- Admin Stats ---
//

func (h *Handlers) GetOverviewStats(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	stats, err := h.Stats.Overview(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Overview stats retrieved successfully", stats)
}

// GetMonthlySales is the handler for GET /admin/stats/monthly-sales?year=
func (h *Handlers) GetMonthlySales(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	sales, err := h.Stats.MonthlySales(c.Request.Context(), p, year)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Monthly sales retrieved successfully", sales)
}
