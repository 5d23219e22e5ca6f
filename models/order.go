package models

import "time"

// OrderStatus represents all possible states of a pizza delivery order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusOnDelivery OrderStatus = "on_delivery"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// AllStatuses lists every order status in lifecycle order.
var AllStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusOnDelivery, StatusDelivered, StatusCancelled}

// ActiveStatuses are the states an order can be in while the customer waits.
var ActiveStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusOnDelivery}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Order struct {
	ID                  string               `json:"id" gorm:"primaryKey"`
	CustomerID          uint                 `json:"customer_id" gorm:"index;not null"`
	Customer            *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Status              OrderStatus          `json:"status" gorm:"index;not null"`
	Subtotal            int64                `json:"subtotal"`
	DeliveryFee         int64                `json:"delivery_fee"`
	OriginalDeliveryFee int64                `json:"original_delivery_fee"`
	Discount            int64                `json:"discount"`
	Total               int64                `json:"total"`
	PromoCode           string               `json:"promo_code,omitempty"`
	DeliveryAddress     string               `json:"delivery_address"`
	DeliveryLocation    Coordinate           `json:"delivery_location" gorm:"embedded;embeddedPrefix:delivery_"`
	CoverageAreaID      string               `json:"coverage_area_id"`
	DistrictID          string               `json:"district_id,omitempty"`
	EstimatedTime       int                  `json:"estimated_time_minutes"`
	PaymentMethod       string               `json:"payment_method"`
	PaymentExternalID   string               `json:"payment_external_id,omitempty"`
	DriverID            *uint                `json:"driver_id,omitempty" gorm:"index"`
	AssignedAt          *time.Time           `json:"assigned_at,omitempty"`
	Notes               string               `json:"notes"`
	Items               []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory       []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	OrderID   string `json:"order_id" gorm:"index;not null"`
	ProductID string `json:"product_id" gorm:"not null"`
	Name      string `json:"name"`     // snapshot name
	Category  string `json:"category"` // snapshot category
	Price     int64  `json:"price"`    // snapshot price at time of order
	Quantity  int    `json:"quantity" gorm:"not null"`
}

// OrderStatusHistory is the audit trail of every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	Actor      string      `json:"actor"`
	ChangedBy  uint        `json:"changed_by"` // 0 for system transitions
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
