// Package coverage decides which area and district serve a coordinate.
package coverage

import (
	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
)

// Result describes how a point is served. Every pointer is nil when the
// point is outside coverage.
type Result struct {
	IsWithinCoverage      bool                 `json:"is_within_coverage"`
	CoverageArea          *models.CoverageArea `json:"coverage_area"`
	NearestDistrict       *models.District     `json:"nearest_district"`
	DistanceToDistrictKm  *float64             `json:"distance_to_district_km,omitempty"`
	EstimatedDeliveryTime *int                 `json:"estimated_delivery_time"`
	DeliveryFee           *int64               `json:"delivery_fee"`
}

// Resolve checks active areas in catalog order and stops at the first whose
// polygon contains point. Within that area the nearest active district wins,
// with ties going to the earlier district. Fee and ETA come from the district
// when there is one, otherwise from the area.
func Resolve(point models.Coordinate, areas []models.CoverageArea, districts []models.District) Result {
	for i := range areas {
		area := areas[i]
		if !area.Active || !geo.PointInPolygon(point, area.Polygon) {
			continue
		}

		res := Result{IsWithinCoverage: true, CoverageArea: &area}
		fee := area.DeliveryFee
		eta := area.EstimatedDeliveryTime

		if d, dist, ok := nearestDistrict(point, area.ID, districts); ok {
			res.NearestDistrict = &d
			res.DistanceToDistrictKm = &dist
			fee = d.DeliveryFee
			eta = d.EstimatedDeliveryTime
		}
		res.DeliveryFee = &fee
		res.EstimatedDeliveryTime = &eta
		return res
	}
	return Result{}
}

func nearestDistrict(point models.Coordinate, areaID string, districts []models.District) (models.District, float64, bool) {
	var (
		best     models.District
		bestDist float64
		found    bool
	)
	for _, d := range districts {
		if !d.Active || d.CoverageAreaID != areaID {
			continue
		}
		dist := geo.HaversineKm(point, d.Center)
		if !found || dist < bestDist {
			best, bestDist, found = d, dist, true
		}
	}
	return best, bestDist, found
}
