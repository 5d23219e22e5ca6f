package models

// CoverageArea is a serviceable region with its own base fee and ETA.
type CoverageArea struct {
	ID                    string       `json:"id" gorm:"primaryKey"`
	Name                  string       `json:"name" gorm:"not null"`
	City                  string       `json:"city"`
	Province              string       `json:"province"`
	Timezone              string       `json:"timezone"`
	Currency              string       `json:"currency"`
	Active                bool         `json:"active"`
	Polygon               []Coordinate `json:"polygon" gorm:"serializer:json"`
	Center                Coordinate   `json:"center" gorm:"embedded;embeddedPrefix:center_"`
	DeliveryFee           int64        `json:"delivery_fee"`
	MinimumOrder          int64        `json:"minimum_order"`
	EstimatedDeliveryTime int          `json:"estimated_delivery_time"`
	MaxDeliveryRadius     float64      `json:"max_delivery_radius_km"`
	Position              int          `json:"-" gorm:"index"` // catalog order
}

// District belongs to exactly one CoverageArea, referenced by CoverageAreaID.
type District struct {
	ID                    string     `json:"id" gorm:"primaryKey"`
	Name                  string     `json:"name" gorm:"not null"`
	City                  string     `json:"city"`
	CoverageAreaID        string     `json:"coverage_area_id" gorm:"index;not null"`
	Active                bool       `json:"active"`
	Center                Coordinate `json:"center" gorm:"embedded;embeddedPrefix:center_"`
	DeliveryFee           int64      `json:"delivery_fee"`
	EstimatedDeliveryTime int        `json:"estimated_delivery_time"`
	Position              int        `json:"-" gorm:"index"`
}

// Address is a known street address used for geocoding.
type Address struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Address     string     `json:"address"`
	Formatted   string     `json:"formatted"`
	City        string     `json:"city"`
	Province    string     `json:"province"`
	PostalCode  string     `json:"postal_code"`
	Country     string     `json:"country"`
	Type        string     `json:"type"`
	Coordinates Coordinate `json:"coordinates" gorm:"embedded;embeddedPrefix:coord_"`
}
