package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
	PaymentExpired PaymentStatus = "EXPIRED"
)

func (s PaymentStatus) Final() bool {
	return s == PaymentPaid || s == PaymentFailed || s == PaymentExpired
}

type Payment struct {
	ExternalID    string        `json:"external_id" gorm:"primaryKey"`
	OrderID       string        `json:"order_id" gorm:"index;not null"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Method        string        `json:"payment_method"`
	Channels      []string      `json:"channels" gorm:"serializer:json"`
	Status        PaymentStatus `json:"status" gorm:"index;not null"`
	CheckoutURL   string        `json:"checkout_url"`
	FailureReason string        `json:"failure_reason,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
