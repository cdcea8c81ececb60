package handlers

import (
	"net/http"

	"github.com/01moynul/medistore/internal/service"
	"github.com/gin-gonic/gin"
)

//
// --- Public Catalog ---
//

func (h *Handlers) GetProduct(c *gin.Context) {
	productID, valid := pathID(c, "productId")
	if !valid {
		return
	}

	product, err := h.Products.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product retrieved successfully", product)
}

//
// --- Seller Product Handlers ---
//

// CreateProduct is the handler for POST /seller/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	product, err := h.Products.CreateProduct(c.Request.Context(), p, input)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product created successfully", product)
}

func (h *Handlers) ListMyProducts(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	products, err := h.Products.ListMyProducts(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Products retrieved successfully", products)
}

// UpdateProduct is the handler for PUT /seller/products/:productId.
// Only the fields present in the body change.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	productID, valid := pathID(c, "productId")
	if !valid {
		return
	}

	var patch service.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	product, err := h.Products.UpdateProduct(c.Request.Context(), p, productID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product updated successfully", product)
}

func (h *Handlers) DeleteProduct(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	productID, valid := pathID(c, "productId")
	if !valid {
		return
	}

	if err := h.Products.DeleteProduct(c.Request.Context(), p, productID); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product deleted successfully", nil)
}
