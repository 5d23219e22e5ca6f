package handlers

import (
	"net/http"

	"pizza-delivery-api/middleware"

	"github.com/gin-gonic/gin"
)

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=50"`
}

type UpdateCartItemRequest struct {
	// zero removes the item
	Quantity *int `json:"quantity" binding:"required,min=0,max=50"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.Carts.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.Carts.Add(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.Carts.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), c.Param("itemId"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	view, err := h.Carts.Remove(c.Request.Context(), middleware.GetUserID(c), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

func (h *Handler) ApplyCartPromo(c *gin.Context) {
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, v, err := h.Carts.ApplyPromo(c.Request.Context(), middleware.GetUserID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Promo applied: " + v.Promo.Title,
		"cart":     view,
		"discount": v.Discount,
	})
}

func (h *Handler) RemoveCartPromo(c *gin.Context) {
	view, err := h.Carts.RemovePromo(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}
