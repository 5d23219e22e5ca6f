package handlers

import (
	"net/http"

	"pizza-delivery-api/menu"
	"pizza-delivery-api/models"
	"pizza-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

type menuQuery struct {
	Category string `form:"category"`
	Popular  bool   `form:"popular"`
}

// GetMenu returns the menu, optionally filtered by category (public)
func (h *Handler) GetMenu(c *gin.Context) {
	var q menuQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.Menu.List(c.Request.Context(), menu.Filter{Category: q.Category, PopularOnly: q.Popular})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// MenuCategories lists the menu sections with their product counts (public)
func (h *Handler) MenuCategories(c *gin.Context) {
	cats, err := h.Menu.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cats), "categories": cats})
}

// SearchMenu matches ?q= against names, descriptions and categories (public)
func (h *Handler) SearchMenu(c *gin.Context) {
	res, err := h.Menu.Search(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type AvailabilityRequest struct {
	Items []menu.Item `json:"items" binding:"required,min=1,dive"`
}

// CheckAvailability reports which of the requested items can be ordered (public)
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Menu.CheckAvailability(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Pizza Delivery Order Lifecycle State Machine",
	})
}
