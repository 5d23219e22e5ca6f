package handlers

import (
	"net/http"

	"pizza-delivery-api/middleware"
	"pizza-delivery-api/models"
	"pizza-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetActiveOrders lists orders waiting on the kitchen or the rider
func (h *Handler) GetActiveOrders(c *gin.Context) {
	orders, err := h.Orders.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=preparing on_delivery delivered"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus advances an order through preparing, on_delivery and delivered
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.Orders.Transition(c.Request.Context(), c.Param("id"), req.Status,
		statemachine.ActorDriver, middleware.GetUserID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated to " + string(o.Status),
		"order":             o,
		"valid_next_states": statemachine.ValidTransitionsFrom(o.Status),
	})
}

type SimulateRequest struct {
	State models.DeliveryState `json:"state" binding:"required,oneof=normal near arrived"`
}

// SimulateDriver moves the simulated rider of an order out for delivery
func (h *Handler) SimulateDriver(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pos, err := h.Orders.Simulate(c.Request.Context(), c.Param("id"), req.State)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": pos})
}

// GetDriverProfile returns the caller's dispatch profile
func (h *Handler) GetDriverProfile(c *gin.Context) {
	d, err := h.Drivers.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": d})
}

type DriverStatusRequest struct {
	Online  *bool           `json:"online" binding:"required"`
	Vehicle *models.Vehicle `json:"vehicle"`
}

// UpdateDriverStatus puts the caller on or off shift
func (h *Handler) UpdateDriverStatus(c *gin.Context) {
	var req DriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.Drivers.SetOnline(c.Request.Context(), middleware.GetUserID(c), *req.Online, req.Vehicle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver is now " + string(d.Status), "driver": d})
}

type DriverLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required,latitude"`
	Lng *float64 `json:"lng" binding:"required,longitude"`
}

// UpdateDriverLocation records the caller's current position
func (h *Handler) UpdateDriverLocation(c *gin.Context) {
	var req DriverLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.Drivers.UpdateLocation(c.Request.Context(), middleware.GetUserID(c),
		models.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": d})
}

type availableDriversQuery struct {
	pointQuery
	Radius float64 `form:"radius" binding:"min=0"`
}

// AvailableDrivers lists on-shift drivers around ?lat=&lng=, nearest first.
// radius is in km and defaults to dispatch.DefaultRadiusKm.
func (h *Handler) AvailableDrivers(c *gin.Context) {
	var q availableDriversQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Drivers.Available(c.Request.Context(), models.Coordinate{Lat: *q.Lat, Lng: *q.Lng}, q.Radius)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetDriverOrders lists the orders assigned to the caller, optionally by ?status=
func (h *Handler) GetDriverOrders(c *gin.Context) {
	orders, err := h.Orders.ListForDriver(c.Request.Context(), middleware.GetUserID(c),
		models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
