package location

import (
	"context"

	"pizza-delivery-api/geo"
)

type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type Feature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// AreasGeoJSON renders the active coverage areas for map clients. Positions
// are [lng, lat] and every ring is closed.
func (s *Service) AreasGeoJSON(ctx context.Context) (*FeatureCollection, error) {
	areas, err := s.catalog.Areas(ctx)
	if err != nil {
		return nil, err
	}
	fc := &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, a := range areas {
		if !a.Active {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			ID:   a.ID,
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: [][][2]float64{geo.Ring(a.Polygon)},
			},
			Properties: map[string]interface{}{
				"name":                    a.Name,
				"city":                    a.City,
				"province":                a.Province,
				"delivery_fee":            a.DeliveryFee,
				"minimum_order":           a.MinimumOrder,
				"estimated_delivery_time": a.EstimatedDeliveryTime,
				"center":                  a.Center.LngLat(),
			},
		})
	}
	return fc, nil
}
