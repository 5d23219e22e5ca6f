package handlers

import (
	"errors"
	"net/http"

	"pizza-delivery-api/middleware"
	"pizza-delivery-api/payment"
	"pizza-delivery-api/repository"

	"github.com/gin-gonic/gin"
)

// PaymentWebhook receives gateway callbacks. Unknown invoices are
// acknowledged so the gateway stops retrying.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var req payment.Webhook
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Payments.HandleWebhook(c.Request.Context(), req)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Unknown external_id"})
		return
	}
	if err != nil && p == nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "payment": p})
}

// GetPayment returns the status of one of the caller's payments
func (h *Handler) GetPayment(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Payments.Status(ctx, c.Param("externalId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.Orders.GetForCustomer(ctx, p.OrderID, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}
