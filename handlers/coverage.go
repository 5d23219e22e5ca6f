package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"pizza-delivery-api/location"
	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"

	"github.com/gin-gonic/gin"
)

func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListCoverageAreas returns the coverage areas, optionally filtered by
// active, city and province.
func (h *Handler) ListCoverageAreas(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
		return
	}
	areas, err := h.Locations.CoverageAreas(c.Request.Context(), location.AreaFilter{
		Active:   active,
		City:     c.Query("city"),
		Province: c.Query("province"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(areas), "coverage_areas": areas})
}

func (h *Handler) CoverageAreasGeoJSON(c *gin.Context) {
	fc, err := h.Locations.AreasGeoJSON(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) GetCoverageArea(c *gin.Context) {
	detail, err := h.Locations.CoverageArea(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetDistricts(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.Locations.CoverageArea(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	active, err := boolQuery(c, "active")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
		return
	}
	districts, err := h.Locations.Districts(ctx, c.Param("id"), location.DistrictFilter{
		Active: active,
		Name:   c.Query("name"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(districts), "districts": districts})
}

// CheckCoverage reports whether we deliver to ?lat=&lng=. When the catalog
// cannot be read the answer is coverage_status "unknown" rather than an error.
func (h *Handler) CheckCoverage(c *gin.Context) {
	var q pointQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	point := models.Coordinate{Lat: *q.Lat, Lng: *q.Lng}

	res, err := h.Locations.CheckCoverage(c.Request.Context(), point)
	var pe *repository.ProviderError
	if errors.As(err, &pe) {
		log.Printf("⚠️  Coverage check degraded: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"coverage_status":    "unknown",
			"is_within_coverage": false,
			"location":           point,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	status := "outside"
	if res.IsWithinCoverage {
		status = "covered"
	}
	c.JSON(http.StatusOK, gin.H{"coverage_status": status, "result": res})
}

type deliveryInfoQuery struct {
	pointQuery
	Subtotal int64 `form:"subtotal" binding:"min=0"`
}

func (h *Handler) GetDeliveryInfo(c *gin.Context) {
	var q deliveryInfoQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	info, err := h.Locations.CalculateDeliveryInfo(c.Request.Context(),
		models.Coordinate{Lat: *q.Lat, Lng: *q.Lng}, q.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
