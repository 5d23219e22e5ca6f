package models

import "time"

type DriverStatus string

const (
	DriverOffline   DriverStatus = "offline"
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
)

type Vehicle struct {
	Type  string `json:"type"`
	Plate string `json:"plate"`
	Model string `json:"model"`
}

// Driver is the dispatch profile of a user with the driver role. It is
// created the first time the driver reports a status or a location.
type Driver struct {
	UserID            uint         `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Name              string       `json:"name"`
	Phone             string       `json:"phone"`
	Status            DriverStatus `json:"status" gorm:"index;not null"`
	CurrentOrderID    string       `json:"current_order_id,omitempty"`
	Location          Coordinate   `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	LocationUpdatedAt *time.Time   `json:"location_updated_at,omitempty"`
	Vehicle           Vehicle      `json:"vehicle" gorm:"embedded;embeddedPrefix:vehicle_"`
	Rating            float64      `json:"rating"`
	TotalDeliveries   int          `json:"total_deliveries"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Located reports whether the driver has ever sent a position.
func (d *Driver) Located() bool {
	return d.LocationUpdatedAt != nil
}
