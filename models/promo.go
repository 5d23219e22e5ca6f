package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// UserRestrictions are the per-user conditions attached to a promo.
// A nil MaxUsagePerUser means unlimited.
type UserRestrictions struct {
	FirstOrderOnly               bool `json:"first_order_only"`
	MaxUsagePerUser              *int `json:"max_usage_per_user"`
	WeekendOnly                  bool `json:"weekend_only"`
	RequiresBothPizzaAndBeverage bool `json:"requires_both_pizza_and_beverage"`
}

// PromoCode is static catalog data; only usage records are ever written.
type PromoCode struct {
	ID                   string           `json:"id" gorm:"primaryKey"`
	Code                 string           `json:"code" gorm:"uniqueIndex;not null"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Type                 DiscountType     `json:"type" gorm:"not null"`
	Value                float64          `json:"value"`
	MinOrderAmount       int64            `json:"min_order_amount"`
	MaxDiscountAmount    *int64           `json:"max_discount_amount"`
	Active               bool             `json:"active"`
	ValidFrom            time.Time        `json:"valid_from"`
	ValidUntil           time.Time        `json:"valid_until"`
	ApplicableCategories []string         `json:"applicable_categories" gorm:"serializer:json"`
	Restrictions         UserRestrictions `json:"user_restrictions" gorm:"embedded;embeddedPrefix:restriction_"`
	Featured             bool             `json:"featured"`
	Position             int              `json:"-"`
}

// PromoUsageRecord is a promo applied to an order. Records are only removed
// when checkout fails before the order is paid for.
type PromoUsageRecord struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	PromoID        string    `json:"promo_id" gorm:"index;not null"`
	Code           string    `json:"code"`
	OrderID        string    `json:"order_id" gorm:"index"`
	DiscountAmount int64     `json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}
