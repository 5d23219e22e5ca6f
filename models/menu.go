package models

import "time"

// Product is a menu entry. Carts copy name, price and category from here
// so promo category rules see the catalog values.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       int64     `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"index"`
	Available   bool      `json:"available"`
	Popular     bool      `json:"popular"`
	Position    int       `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
