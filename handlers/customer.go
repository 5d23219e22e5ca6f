package handlers

import (
	"net/http"

	"pizza-delivery-api/middleware"
	"pizza-delivery-api/order"

	"github.com/gin-gonic/gin"
)

// PlaceOrder checks out the caller's cart (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Orders.Checkout(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Order placed successfully",
		"order":           res.Order,
		"payment":         res.Payment,
		"promo_status":    res.PromoStatus,
		"location_source": res.LocationSource,
		"geolocation":     res.Geolocation,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListByCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one of the caller's orders with its status history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	o, err := h.Orders.GetForCustomer(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder lets the customer cancel before preparation starts
func (h *Handler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	o, err := h.Orders.Cancel(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": o})
}

// GetOrderStats summarizes the caller's orders over ?period=all|week|month|year
func (h *Handler) GetOrderStats(c *gin.Context) {
	st, err := h.Orders.Stats(c.Request.Context(), middleware.GetUserID(c), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": st})
}
