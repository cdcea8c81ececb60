package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/medistore/internal/middleware"
	"github.com/01moynul/medistore/internal/models"
	"github.com/01moynul/medistore/internal/service"
	"github.com/gin-gonic/gin"
)

//
// --- Customer Order Handlers ---
//

// Checkout is the handler for POST /orders/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	var input service.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	order, err := h.Orders.Checkout(c.Request.Context(), p, input)
	middleware.RecordOrderOperation("checkout", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *Handlers) GetMyOrders(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	orders, err := h.Orders.GetMyOrders(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *Handlers) GetMyOrderByID(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	order, err := h.Orders.GetMyOrderByID(c.Request.Context(), p, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *Handlers) CancelMyOrder(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	order, err := h.Orders.CancelMyOrder(c.Request.Context(), p, orderID)
	middleware.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order cancelled", order)
}

//
// --- Seller Order Handlers ---
//

// StatusInput is the body of every status-change endpoint.
type StatusInput struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GetSellerOrders is the handler for GET /orders/seller/my-orders?page=&limit=&status=
func (h *Handlers) GetSellerOrders(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	// Unparseable numbers fall back to the defaults.
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	query := service.SellerOrderQuery{
		Page:   page,
		Limit:  limit,
		Status: models.OrderStatus(c.Query("status")),
	}

	result, err := h.Orders.GetSellerOrders(c.Request.Context(), p, query)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Seller orders retrieved successfully", result)
}

func (h *Handlers) GetSellerOrder(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	order, err := h.Orders.GetSellerOrder(c.Request.Context(), p, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateOrderItemStatus is the handler for
// PATCH /orders/seller/order-items/:orderItemId/status
func (h *Handlers) UpdateOrderItemStatus(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	itemID, valid := pathID(c, "orderItemId")
	if !valid {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, err := h.Orders.UpdateOrderItemStatus(c.Request.Context(), p, itemID, input.Status)
	middleware.RecordOrderOperation("update_item_status", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order item status updated", item)
}

//
// --- Admin Order Handlers ---
//

func (h *Handlers) GetOrderByID(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	order, err := h.Orders.GetOrderByID(c.Request.Context(), p, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	order, err := h.Orders.UpdateOrderStatus(c.Request.Context(), p, orderID, input.Status)
	middleware.RecordOrderOperation("update_status", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order status updated", order)
}
