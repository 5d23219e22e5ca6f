package models

import "time"

type NotificationType string

const (
	NotifyOrderUpdate    NotificationType = "order_update"
	NotifyPaymentUpdate  NotificationType = "payment_update"
	NotifyDeliveryUpdate NotificationType = "delivery_update"
	NotifyInfo           NotificationType = "info"
)

// NotificationTypes lists every type a user can opt in or out of.
var NotificationTypes = []NotificationType{NotifyOrderUpdate, NotifyPaymentUpdate, NotifyDeliveryUpdate, NotifyInfo}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Notification is one entry in a user's in-app inbox.
type Notification struct {
	ID         string           `json:"id" gorm:"primaryKey"`
	UserID     uint             `json:"user_id" gorm:"index;not null"`
	Type       NotificationType `json:"type" gorm:"index;not null"`
	Severity   Severity         `json:"severity"`
	TemplateID string           `json:"template_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	OrderID    string           `json:"order_id,omitempty"`
	Read       bool             `json:"read"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type NotificationPreferences struct {
	UserID       uint               `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	EnabledTypes []NotificationType `json:"enabled_types" gorm:"serializer:json"`
	Language     string             `json:"language"`
	Timezone     string             `json:"timezone"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Enabled reports whether notifications of type t reach the inbox.
func (p *NotificationPreferences) Enabled(t NotificationType) bool {
	for _, e := range p.EnabledTypes {
		if e == t {
			return true
		}
	}
	return false
}
