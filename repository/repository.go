// Package repository defines the storage contracts the services depend on,
// with in-memory and gorm/sqlite implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"pizza-delivery-api/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrConflict  = errors.New("record was modified concurrently")
)

// ProviderError reports that a catalog or history lookup failed. Callers
// surface it once; nothing at this layer retries.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return "provider " + e.Op + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CatalogRepository serves the read-mostly catalog. Implementations must not
// cache indefinitely; every call reflects the current catalog.
type CatalogRepository interface {
	Areas(ctx context.Context) ([]models.CoverageArea, error)
	Districts(ctx context.Context) ([]models.District, error)
	Promos(ctx context.Context) ([]models.PromoCode, error)
	Products(ctx context.Context) ([]models.Product, error)
	Addresses(ctx context.Context) ([]models.Address, error)
}

// UsageRepository is the promo usage log. Records are appended when a promo
// is applied and removed only when the order never came into being.
type UsageRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]models.PromoUsageRecord, error)
	FindForOrder(ctx context.Context, userID uint, promoID, orderID string) (*models.PromoUsageRecord, error)
	Append(ctx context.Context, rec *models.PromoUsageRecord) error
	// Remove deletes the user's records for orderID and reports how many
	// were removed.
	Remove(ctx context.Context, userID uint, orderID string) (int, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
	FindByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)
	// UpdateStatus moves the order to h.ToStatus only if it is still in
	// from, and records h in the same step.
	UpdateStatus(ctx context.Context, id string, from models.OrderStatus, h models.OrderStatusHistory) error
	SetPayment(ctx context.Context, id, externalID string) error
	AssignDriver(ctx context.Context, id string, driverID uint, at time.Time) error
	// FindByDriver lists the driver's orders, newest first. No statuses
	// means all of them.
	FindByDriver(ctx context.Context, driverID uint, statuses ...models.OrderStatus) ([]models.Order, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, externalID string) (*models.Payment, error)
	FindByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type DriverRepository interface {
	Get(ctx context.Context, userID uint) (*models.Driver, error)
	// Save inserts or replaces the whole profile.
	Save(ctx context.Context, d *models.Driver) error
	FindByStatus(ctx context.Context, status models.DriverStatus) ([]models.Driver, error)
	// Claim marks the driver busy with orderID. It fails with ErrConflict
	// when the driver is busy with another order.
	Claim(ctx context.Context, userID uint, orderID string) error
	// Release frees the driver from orderID, counting a delivery when
	// delivered is set. Releasing an order the driver does not hold is a
	// no-op.
	Release(ctx context.Context, userID uint, orderID string, delivered bool) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// FindByUser returns the user's notifications, newest first.
	FindByUser(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint, at time.Time) (int, error)
	Delete(ctx context.Context, userID uint, id string) error
	GetPreferences(ctx context.Context, userID uint) (*models.NotificationPreferences, error)
	SavePreferences(ctx context.Context, p *models.NotificationPreferences) error
}
