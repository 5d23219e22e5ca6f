// Package geo holds the spherical-earth math shared by coverage, pricing and
// driver tracking. Every function is pure and safe for concurrent use.
package geo

import (
	"errors"
	"fmt"
	"math"

	"pizza-delivery-api/models"
)

// EarthRadiusKm is the mean Earth radius used by every distance calculation.
const EarthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b models.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair outside [0,1] for antipodal points
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// BearingDeg returns the initial bearing from a to b, normalized to [0, 360).
func BearingDeg(a, b models.Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLng := toRad(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	bearing := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		bearing = 0
	}
	return bearing
}

// Destination projects a point distanceKm away from origin along bearingDeg.
func Destination(origin models.Coordinate, bearingDeg, distanceKm float64) models.Coordinate {
	d := distanceKm / EarthRadiusKm
	brng := toRad(bearingDeg)
	lat1 := toRad(origin.Lat)
	lng1 := toRad(origin.Lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return models.Coordinate{
		Lat: toDeg(lat2),
		Lng: normalizeLng(toDeg(lng2)),
	}
}

func normalizeLng(lng float64) float64 {
	lng = math.Mod(lng+540, 360) - 180
	if lng < -180 {
		lng += 360
	}
	return lng
}

// PointInPolygon reports whether p lies inside polygon using the even-odd
// ray casting rule. Latitude is the crossing axis and longitude the ray
// axis. The ring is implicitly closed; a repeated closing vertex is harmless.
func PointInPolygon(p models.Coordinate, polygon []models.Coordinate) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := polygon[i].Lat, polygon[i].Lng
		xj, yj := polygon[j].Lat, polygon[j].Lng

		if (yi > p.Lng) != (yj > p.Lng) &&
			p.Lat < (xj-xi)*(p.Lng-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ValidCoordinate checks that c is a finite WGS84 position.
func ValidCoordinate(c models.Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

// Ring converts a polygon to a closed GeoJSON linear ring of [lng, lat] pairs.
func Ring(polygon []models.Coordinate) [][2]float64 {
	ring := make([][2]float64, 0, len(polygon)+1)
	for _, c := range polygon {
		ring = append(ring, c.LngLat())
	}
	if len(polygon) > 0 && polygon[0] != polygon[len(polygon)-1] {
		ring = append(ring, polygon[0].LngLat())
	}
	return ring
}
