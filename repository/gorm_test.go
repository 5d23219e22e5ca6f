package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pizza-delivery-api/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormCatalog_SeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c := NewGormCatalog(db)

	for i := 0; i < 2; i++ {
		if err := c.Seed(ctx, DefaultCatalog()); err != nil {
			t.Fatalf("Seed #%d: %v", i+1, err)
		}
	}

	areas, err := c.Areas(ctx)
	if err != nil {
		t.Fatalf("Areas: %v", err)
	}
	if len(areas) != 2 || areas[0].ID != "surabaya" {
		t.Fatalf("areas = %+v", areas)
	}
	if len(areas[0].Polygon) != 5 || areas[0].Center.Lat != -7.2575 {
		t.Errorf("polygon/center did not round-trip: %+v", areas[0])
	}

	promos, _ := c.Promos(ctx)
	if len(promos) != 6 {
		t.Fatalf("expected 6 promos, got %d", len(promos))
	}
	pizza := promos[1]
	if pizza.Code != "PIZZA30" || len(pizza.ApplicableCategories) != 3 {
		t.Errorf("categories did not round-trip: %+v", pizza)
	}
	if pizza.Restrictions.MaxUsagePerUser == nil || *pizza.Restrictions.MaxUsagePerUser != 3 {
		t.Errorf("restrictions did not round-trip: %+v", pizza.Restrictions)
	}
	if pizza.MaxDiscountAmount == nil || *pizza.MaxDiscountAmount != 50000 {
		t.Errorf("cap did not round-trip: %v", pizza.MaxDiscountAmount)
	}

	districts, _ := c.Districts(ctx)
	products, _ := c.Products(ctx)
	addresses, _ := c.Addresses(ctx)
	if len(districts) != 4 || len(products) != 7 || len(addresses) != 3 {
		t.Errorf("districts=%d products=%d addresses=%d", len(districts), len(products), len(addresses))
	}
}

func TestGormCatalog_SeedAfterPartialCatalog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c := NewGormCatalog(db)

	full := DefaultCatalog()
	if err := c.Seed(ctx, Catalog{Areas: full.Areas}); err != nil {
		t.Fatalf("Seed areas: %v", err)
	}
	if err := c.Seed(ctx, full); err != nil {
		t.Fatalf("Seed full: %v", err)
	}

	areas, _ := c.Areas(ctx)
	promos, _ := c.Promos(ctx)
	products, _ := c.Products(ctx)
	if len(areas) != 2 || len(promos) != 6 || len(products) != 7 {
		t.Errorf("areas=%d promos=%d products=%d", len(areas), len(promos), len(products))
	}
}

func TestGormCatalog_ProviderError(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrator().DropTable(&models.PromoCode{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	_, err := NewGormCatalog(db).Promos(context.Background())
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGormUsage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := NewGormUsage(db)

	rec := &models.PromoUsageRecord{ID: "r1", UserID: 1, PromoID: "promo_001", Code: "WELCOME20", OrderID: "o1", DiscountAmount: 25000, UsedAt: time.Now()}
	if err := u.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := u.FindForOrder(ctx, 1, "promo_001", "o1")
	if err != nil || got.DiscountAmount != 25000 {
		t.Errorf("FindForOrder = %+v, %v", got, err)
	}
	if _, err := u.FindForOrder(ctx, 1, "promo_001", "o2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	recs, _ := u.FindByUser(ctx, 1)
	if len(recs) != 1 {
		t.Errorf("FindByUser returned %d", len(recs))
	}
	if n, err := u.Remove(ctx, 1, "o1"); err != nil || n != 1 {
		t.Errorf("Remove = %d, %v", n, err)
	}
	if _, err := u.FindForOrder(ctx, 1, "promo_001", "o1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("record still there after Remove: %v", err)
	}
}

func TestGormOrders(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormOrders(db)

	o := newOrder("o1", 1, models.StatusPending)
	o.DeliveryLocation = models.Coordinate{Lat: -7.2575, Lng: 112.7521}
	if err := r.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	h := models.OrderStatusHistory{FromStatus: models.StatusPending, ToStatus: models.StatusConfirmed, Actor: "system"}
	if err := r.UpdateStatus(ctx, "o1", models.StatusPending, h); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := r.UpdateStatus(ctx, "o1", models.StatusPending, h); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := r.UpdateStatus(ctx, "nope", models.StatusPending, h); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := r.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusConfirmed {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Items) != 1 || len(got.StatusHistory) != 2 {
		t.Errorf("items=%d history=%d", len(got.Items), len(got.StatusHistory))
	}
	if got.StatusHistory[1].ToStatus != models.StatusConfirmed {
		t.Errorf("history out of order: %+v", got.StatusHistory)
	}
	if got.DeliveryLocation.Lng != 112.7521 {
		t.Errorf("location = %+v", got.DeliveryLocation)
	}

	active, _ := r.FindByStatus(ctx, models.ActiveStatuses...)
	if len(active) != 1 {
		t.Errorf("active orders = %d", len(active))
	}
	if err := r.SetPayment(ctx, "o1", "pizza-order-1"); err != nil {
		t.Fatalf("SetPayment: %v", err)
	}
	mine, _ := r.FindByCustomer(ctx, 1)
	if len(mine) != 1 || mine[0].PaymentExternalID != "pizza-order-1" {
		t.Errorf("FindByCustomer = %+v", mine)
	}
	if _, err := r.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGormPayments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormPayments(db)

	p := &models.Payment{ExternalID: "x1", OrderID: "o1", Amount: 100000, Currency: "IDR",
		Channels: []string{"BCA", "BNI"}, Status: models.PaymentPending}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	pending, _ := r.FindByStatus(ctx, models.PaymentPending)
	if len(pending) != 1 || len(pending[0].Channels) != 2 {
		t.Fatalf("pending = %+v", pending)
	}

	now := time.Now()
	p.Status, p.PaidAt = models.PaymentPaid, &now
	if err := r.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := r.Get(ctx, "x1")
	if got.Status != models.PaymentPaid || got.PaidAt == nil {
		t.Errorf("update lost: %+v", got)
	}
	if err := r.Update(ctx, &models.Payment{ExternalID: "none", Status: models.PaymentPaid}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGormUsers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormUsers(db)

	u := &models.User{Name: "Budi", Email: "budi@example.com", PasswordHash: "x", Role: models.RoleDriver}
	if err := r.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Create(ctx, &models.User{Name: "B", Email: "BUDI@example.com", PasswordHash: "y"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	got, err := r.GetByEmail(ctx, "Budi@Example.com")
	if err != nil || got.ID != u.ID || got.Role != models.RoleDriver {
		t.Errorf("GetByEmail = %+v, %v", got, err)
	}
	if _, err := r.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGormOrders_AssignDriver(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormOrders(db)
	r.Create(ctx, newOrder("o1", 1, models.StatusOnDelivery))
	r.Create(ctx, newOrder("o2", 1, models.StatusPreparing))

	if err := r.AssignDriver(ctx, "o1", 9, time.Now()); err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	if err := r.AssignDriver(ctx, "missing", 9, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	mine, err := r.FindByDriver(ctx, 9)
	if err != nil || len(mine) != 1 || mine[0].DriverID == nil || *mine[0].DriverID != 9 {
		t.Fatalf("FindByDriver = %+v, %v", mine, err)
	}
	if len(mine[0].Items) != 1 {
		t.Errorf("items not preloaded: %+v", mine[0])
	}
	if done, _ := r.FindByDriver(ctx, 9, models.StatusDelivered); len(done) != 0 {
		t.Errorf("status filter ignored: %d orders", len(done))
	}
}

func TestGormDrivers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormDrivers(db)

	now := time.Now()
	d := &models.Driver{
		UserID:            9,
		Name:              "Budi",
		Status:            models.DriverAvailable,
		Location:          models.Coordinate{Lat: -7.26, Lng: 112.75},
		LocationUpdatedAt: &now,
		Vehicle:           models.Vehicle{Type: "motorcycle", Plate: "L 1234 AB"},
		Rating:            4.8,
	}
	if err := r.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d.Rating = 4.9
	if err := r.Save(ctx, d); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := r.Get(ctx, 9)
	if err != nil || got.Rating != 4.9 || got.Location.Lng != 112.75 || got.Vehicle.Plate != "L 1234 AB" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := r.Get(ctx, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := r.Claim(ctx, 9, "o1"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := r.Claim(ctx, 9, "o2"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := r.Claim(ctx, 10, "o2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if avail, _ := r.FindByStatus(ctx, models.DriverAvailable); len(avail) != 0 {
		t.Errorf("busy driver listed as available")
	}
	if err := r.Release(ctx, 9, "o1", true); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, _ = r.Get(ctx, 9)
	if got.Status != models.DriverAvailable || got.CurrentOrderID != "" || got.TotalDeliveries != 1 {
		t.Errorf("after release = %+v", got)
	}
}

func TestGormNotifications(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewGormNotifications(db)

	base := time.Now()
	r.Create(ctx, &models.Notification{ID: "n1", UserID: 1, Type: models.NotifyOrderUpdate, CreatedAt: base})
	r.Create(ctx, &models.Notification{ID: "n2", UserID: 1, Type: models.NotifyPaymentUpdate, CreatedAt: base.Add(time.Minute)})

	inbox, err := r.FindByUser(ctx, 1)
	if err != nil || len(inbox) != 2 || inbox[0].ID != "n2" {
		t.Fatalf("FindByUser = %+v, %v", inbox, err)
	}
	if err := r.MarkRead(ctx, 1, "n1", base); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := r.MarkRead(ctx, 2, "n2", base); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if n, err := r.MarkAllRead(ctx, 1, base); err != nil || n != 1 {
		t.Errorf("MarkAllRead = %d, %v", n, err)
	}
	if err := r.Delete(ctx, 1, "n1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Delete(ctx, 1, "n1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	prefs := &models.NotificationPreferences{UserID: 1, EnabledTypes: []models.NotificationType{models.NotifyOrderUpdate}, Language: "id"}
	if err := r.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	got, err := r.GetPreferences(ctx, 1)
	if err != nil || !got.Enabled(models.NotifyOrderUpdate) || got.Language != "id" {
		t.Errorf("GetPreferences = %+v, %v", got, err)
	}
}
