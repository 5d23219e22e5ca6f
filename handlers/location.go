package handlers

import (
	"net/http"

	"pizza-delivery-api/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Geocode(c *gin.Context) {
	res, err := h.Locations.Geocode(c.Request.Context(), c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ReverseGeocode(c *gin.Context) {
	var q pointQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Locations.ReverseGeocode(c.Request.Context(), models.Coordinate{Lat: *q.Lat, Lng: *q.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type searchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"min=0,max=50"`
}

func (h *Handler) SearchLocations(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	results, err := h.Locations.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Q, "count": len(results), "results": results})
}
