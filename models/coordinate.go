package models

// Coordinate is a WGS84 position in degrees. Polygons, centers and driver
// positions always use these named fields; bare [lng, lat] arrays only
// appear in GeoJSON output.
type Coordinate struct {
	Lat float64 `json:"lat" binding:"latitude"`
	Lng float64 `json:"lng" binding:"longitude"`
}

// LngLat returns the GeoJSON position order.
func (c Coordinate) LngLat() [2]float64 {
	return [2]float64{c.Lng, c.Lat}
}
