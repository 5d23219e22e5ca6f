package models

import "time"

// DeliveryState drives where the simulated driver is placed.
type DeliveryState string

const (
	DeliveryNormal  DeliveryState = "normal"
	DeliveryNear    DeliveryState = "near"
	DeliveryArrived DeliveryState = "arrived"
)

func (s DeliveryState) Valid() bool {
	switch s {
	case DeliveryNormal, DeliveryNear, DeliveryArrived:
		return true
	}
	return false
}

// DriverPosition is one published update of a tracking session.
type DriverPosition struct {
	OrderID    string        `json:"order_id"`
	Position   Coordinate    `json:"position"`
	Customer   Coordinate    `json:"customer"`
	State      DeliveryState `json:"state"`
	DistanceKm float64       `json:"distance_km"`
	ETAMinutes int           `json:"eta_minutes"`
	Done       bool          `json:"done"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
