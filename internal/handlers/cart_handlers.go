package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (any authenticated user) ---
//

// AddToCartInput defines the JSON for adding an item to the cart.
// An omitted quantity means 1.
type AddToCartInput struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

// UpdateCartItemInput defines the JSON for changing a line's quantity.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity"`
}

func (h *Handlers) GetMyCart(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	cart, err := h.Carts.GetMyCart(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *Handlers) AddToCart(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	cart, err := h.Carts.AddToCart(c.Request.Context(), p, input.ProductID, qty)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product added to cart", cart)
}

func (h *Handlers) UpdateCartItem(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	itemID, valid := pathID(c, "itemId")
	if !valid {
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Quantity == nil {
		fail(c, http.StatusBadRequest, "quantity is required")
		return
	}

	cart, err := h.Carts.UpdateCartItemQuantity(c.Request.Context(), p, itemID, *input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart item updated", cart)
}

func (h *Handlers) RemoveCartItem(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	itemID, valid := pathID(c, "itemId")
	if !valid {
		return
	}

	cart, err := h.Carts.RemoveCartItem(c.Request.Context(), p, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart item removed", cart)
}

func (h *Handlers) ClearMyCart(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	cart, err := h.Carts.ClearMyCart(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart cleared", cart)
}
