// Package pricing turns a coverage match and an order subtotal into the
// delivery fee, ETA and minimum-order verdict.
package pricing

import (
	"fmt"

	"pizza-delivery-api/coverage"
	"pizza-delivery-api/models"
)

// FreeDeliveryThreshold is the subtotal (IDR) from which delivery is free.
const FreeDeliveryThreshold int64 = 100000

// OutsideCoverageError means no active area contains the point.
// It blocks order placement.
type OutsideCoverageError struct {
	Point models.Coordinate
}

func (e *OutsideCoverageError) Error() string {
	return fmt.Sprintf("location (%.6f, %.6f) is outside delivery coverage", e.Point.Lat, e.Point.Lng)
}

// Quote is the delivery part of an order price. It is always computed on the
// subtotal before any promo discount.
type Quote struct {
	DeliveryFee           int64                `json:"delivery_fee"`
	OriginalDeliveryFee   int64                `json:"original_delivery_fee"`
	EstimatedDeliveryTime *int                 `json:"estimated_delivery_time"`
	MinimumOrder          int64                `json:"minimum_order"`
	MinimumOrderMet       bool                 `json:"minimum_order_met"`
	FreeDeliveryApplied   bool                 `json:"free_delivery_applied"`
	FreeDeliveryThreshold int64                `json:"free_delivery_threshold"`
	Area                  *models.CoverageArea `json:"-"`
	District              *models.District     `json:"-"`
}

// Calculate prices delivery of an order worth subtotal to point.
func Calculate(point models.Coordinate, subtotal int64, areas []models.CoverageArea, districts []models.District) (*Quote, error) {
	res := coverage.Resolve(point, areas, districts)
	if !res.IsWithinCoverage {
		return nil, &OutsideCoverageError{Point: point}
	}
	return FromCoverage(res, subtotal), nil
}

// FromCoverage prices an already resolved coverage result.
// res must be within coverage.
func FromCoverage(res coverage.Result, subtotal int64) *Quote {
	q := &Quote{
		OriginalDeliveryFee:   *res.DeliveryFee,
		EstimatedDeliveryTime: res.EstimatedDeliveryTime,
		MinimumOrder:          res.CoverageArea.MinimumOrder,
		MinimumOrderMet:       subtotal >= res.CoverageArea.MinimumOrder,
		FreeDeliveryThreshold: FreeDeliveryThreshold,
		Area:                  res.CoverageArea,
		District:              res.NearestDistrict,
	}
	q.DeliveryFee = q.OriginalDeliveryFee
	if subtotal >= FreeDeliveryThreshold {
		q.DeliveryFee = 0
		q.FreeDeliveryApplied = true
	}
	return q
}

// Total combines the delivery quote with a promo discount. The discount only
// reduces the subtotal and never changes the fee decided above.
func Total(subtotal, discount int64, q *Quote) int64 {
	goods := subtotal - discount
	if goods < 0 {
		goods = 0
	}
	return goods + q.DeliveryFee
}
