package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pizza-delivery-api/models"
)

// AllModels lists every persisted model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.CoverageArea{},
		&models.District{},
		&models.Address{},
		&models.Product{},
		&models.PromoCode{},
		&models.PromoUsageRecord{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Payment{},
		&models.Driver{},
		&models.Notification{},
		&models.NotificationPreferences{},
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// GormCatalog reads the catalog tables on every call.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (r *GormCatalog) Areas(ctx context.Context) ([]models.CoverageArea, error) {
	var areas []models.CoverageArea
	if err := r.db.WithContext(ctx).Order("position asc").Find(&areas).Error; err != nil {
		return nil, &ProviderError{Op: "list coverage areas", Err: err}
	}
	return areas, nil
}

func (r *GormCatalog) Districts(ctx context.Context) ([]models.District, error) {
	var districts []models.District
	if err := r.db.WithContext(ctx).Order("position asc").Find(&districts).Error; err != nil {
		return nil, &ProviderError{Op: "list districts", Err: err}
	}
	return districts, nil
}

func (r *GormCatalog) Promos(ctx context.Context) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := r.db.WithContext(ctx).Order("position asc").Find(&promos).Error; err != nil {
		return nil, &ProviderError{Op: "list promos", Err: err}
	}
	return promos, nil
}

func (r *GormCatalog) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("position asc").Find(&products).Error; err != nil {
		return nil, &ProviderError{Op: "list products", Err: err}
	}
	return products, nil
}

func (r *GormCatalog) Addresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.WithContext(ctx).Order("id asc").Find(&addresses).Error; err != nil {
		return nil, &ProviderError{Op: "list addresses", Err: err}
	}
	return addresses, nil
}

// Seed inserts the catalog rows that are not there yet. Every insert starts
// from tx so no statement state carries over between tables.
func (r *GormCatalog) Seed(ctx context.Context, c Catalog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tables := []struct {
			name string
			n    int
			rows interface{}
		}{
			{"areas", len(c.Areas), &c.Areas},
			{"districts", len(c.Districts), &c.Districts},
			{"addresses", len(c.Addresses), &c.Addresses},
			{"products", len(c.Products), &c.Products},
			{"promos", len(c.Promos), &c.Promos},
		}
		for _, t := range tables {
			if t.n == 0 {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(t.rows).Error; err != nil {
				return fmt.Errorf("seed %s: %w", t.name, err)
			}
		}
		return nil
	})
}

type GormUsage struct {
	db *gorm.DB
}

func NewGormUsage(db *gorm.DB) *GormUsage {
	return &GormUsage{db: db}
}

func (r *GormUsage) FindByUser(ctx context.Context, userID uint) ([]models.PromoUsageRecord, error) {
	var recs []models.PromoUsageRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("used_at asc").Find(&recs).Error
	if err != nil {
		return nil, &ProviderError{Op: "list promo usage", Err: err}
	}
	return recs, nil
}

func (r *GormUsage) FindForOrder(ctx context.Context, userID uint, promoID, orderID string) (*models.PromoUsageRecord, error) {
	var rec models.PromoUsageRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND promo_id = ? AND order_id = ?", userID, promoID, orderID).
		First(&rec).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *GormUsage) Append(ctx context.Context, rec *models.PromoUsageRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *GormUsage) Remove(ctx context.Context, userID uint, orderID string) (int, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND order_id = ?", userID, orderID).
		Delete(&models.PromoUsageRecord{})
	return int(res.RowsAffected), res.Error
}

type GormOrders struct {
	db *gorm.DB
}

func NewGormOrders(db *gorm.DB) *GormOrders {
	return &GormOrders{db: db}
}

func (r *GormOrders) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *GormOrders) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

func (r *GormOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.preloaded(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormOrders) FindByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.preloaded(ctx).Where("customer_id = ?", customerID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *GormOrders) FindByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.preloaded(ctx).Where("status IN ?", statuses).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *GormOrders) UpdateStatus(ctx context.Context, id string, from models.OrderStatus, h models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", h.ToStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}
		h.ID = 0
		h.OrderID = id
		return tx.Create(&h).Error
	})
}

func (r *GormOrders) SetPayment(ctx context.Context, id, externalID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_external_id", externalID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrders) AssignDriver(ctx context.Context, id string, driverID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"driver_id": driverID, "assigned_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrders) FindByDriver(ctx context.Context, driverID uint, statuses ...models.OrderStatus) ([]models.Order, error) {
	q := r.preloaded(ctx).Where("driver_id = ?", driverID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var orders []models.Order
	err := q.Order("created_at desc").Find(&orders).Error
	return orders, err
}

type GormPayments struct {
	db *gorm.DB
}

func NewGormPayments(db *gorm.DB) *GormPayments {
	return &GormPayments{db: db}
}

func (r *GormPayments) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormPayments) Get(ctx context.Context, externalID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "external_id = ?", externalID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormPayments) FindByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc").Find(&payments).Error
	return payments, err
}

func (r *GormPayments) Update(ctx context.Context, p *models.Payment) error {
	res := r.db.WithContext(ctx).Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormUsers struct {
	db *gorm.DB
}

func NewGormUsers(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (r *GormUsers) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		return tx.Create(u).Error
	})
}

func (r *GormUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *GormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

type GormDrivers struct {
	db *gorm.DB
}

func NewGormDrivers(db *gorm.DB) *GormDrivers {
	return &GormDrivers{db: db}
}

func (r *GormDrivers) Get(ctx context.Context, userID uint) (*models.Driver, error) {
	var d models.Driver
	if err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *GormDrivers) Save(ctx context.Context, d *models.Driver) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *GormDrivers) FindByStatus(ctx context.Context, status models.DriverStatus) ([]models.Driver, error) {
	var drivers []models.Driver
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("user_id asc").Find(&drivers).Error
	return drivers, err
}

func (r *GormDrivers) Claim(ctx context.Context, userID uint, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Driver{}).
			Where("user_id = ? AND (status <> ? OR current_order_id = ?)", userID, models.DriverBusy, orderID).
			Updates(map[string]interface{}{"status": models.DriverBusy, "current_order_id": orderID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Driver{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}
		return nil
	})
}

func (r *GormDrivers) Release(ctx context.Context, userID uint, orderID string, delivered bool) error {
	updates := map[string]interface{}{"status": models.DriverAvailable, "current_order_id": ""}
	if delivered {
		updates["total_deliveries"] = gorm.Expr("total_deliveries + 1")
	}
	return r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("user_id = ? AND current_order_id = ?", userID, orderID).
		Updates(updates).Error
}

type GormNotifications struct {
	db *gorm.DB
}

func NewGormNotifications(db *gorm.DB) *GormNotifications {
	return &GormNotifications{db: db}
}

func (r *GormNotifications) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormNotifications) FindByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&out).Error
	return out, err
}

func (r *GormNotifications) MarkRead(ctx context.Context, userID uint, id string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n models.Notification
		if err := tx.First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return notFound(err)
		}
		if n.Read {
			return nil
		}
		return tx.Model(&n).Updates(map[string]interface{}{"read": true, "read_at": at}).Error
	})
}

func (r *GormNotifications) MarkAllRead(ctx context.Context, userID uint, at time.Time) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at})
	return int(res.RowsAffected), res.Error
}

func (r *GormNotifications) Delete(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormNotifications) GetPreferences(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	var p models.NotificationPreferences
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormNotifications) SavePreferences(ctx context.Context, p *models.NotificationPreferences) error {
	return r.db.WithContext(ctx).Save(p).Error
}

var (
	_ CatalogRepository      = (*GormCatalog)(nil)
	_ UsageRepository        = (*GormUsage)(nil)
	_ OrderRepository        = (*GormOrders)(nil)
	_ PaymentRepository      = (*GormPayments)(nil)
	_ UserRepository         = (*GormUsers)(nil)
	_ DriverRepository       = (*GormDrivers)(nil)
	_ NotificationRepository = (*GormNotifications)(nil)
)
