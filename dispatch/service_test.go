package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

var (
	wednesday      = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	surabayaCenter = models.Coordinate{Lat: -7.2575, Lng: 112.7521}
)

func newTestService(t *testing.T, names ...string) (*Service, *repository.MemoryDrivers) {
	t.Helper()
	users := repository.NewMemoryUsers()
	for _, name := range names {
		if err := users.Create(context.Background(), &models.User{Name: name, Email: name + "@example.com", Role: models.RoleDriver}); err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
	}
	drivers := repository.NewMemoryDrivers()
	return NewService(drivers, users).WithClock(func() time.Time { return wednesday }), drivers
}

func TestProfileIsCreatedOffline(t *testing.T) {
	svc, _ := newTestService(t, "budi")
	ctx := context.Background()

	d, err := svc.Profile(ctx, 1)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if d.Name != "budi" || d.Status != models.DriverOffline || d.Located() {
		t.Errorf("new profile = %+v", d)
	}
	if _, err := svc.Profile(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
}

func TestSetOnline(t *testing.T) {
	svc, _ := newTestService(t, "budi")
	ctx := context.Background()

	vehicle := &models.Vehicle{Type: "motorcycle", Plate: "L 1234 AB", Model: "Honda Beat"}
	d, err := svc.SetOnline(ctx, 1, true, vehicle)
	if err != nil || d.Status != models.DriverAvailable || d.Vehicle.Plate != "L 1234 AB" {
		t.Fatalf("SetOnline(true) = %+v, %v", d, err)
	}

	if err := svc.Claim(ctx, 1, "order-1"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := svc.SetOnline(ctx, 1, false, nil); !errors.Is(err, ErrDriverBusy) {
		t.Errorf("going offline mid delivery: expected ErrDriverBusy, got %v", err)
	}
	if d, _ := svc.SetOnline(ctx, 1, true, nil); d.Status != models.DriverBusy {
		t.Errorf("going online while busy changed status to %s", d.Status)
	}

	svc.Release(ctx, 1, "order-1", true)
	d, err = svc.SetOnline(ctx, 1, false, nil)
	if err != nil || d.Status != models.DriverOffline || d.TotalDeliveries != 1 {
		t.Errorf("SetOnline(false) = %+v, %v", d, err)
	}
}

func TestUpdateLocation(t *testing.T) {
	svc, _ := newTestService(t, "budi")
	ctx := context.Background()

	d, err := svc.UpdateLocation(ctx, 1, surabayaCenter)
	if err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if d.Location != surabayaCenter || d.LocationUpdatedAt == nil || !d.LocationUpdatedAt.Equal(wednesday) {
		t.Errorf("location = %+v at %v", d.Location, d.LocationUpdatedAt)
	}
	if _, err := svc.UpdateLocation(ctx, 1, models.Coordinate{Lat: 91, Lng: 0}); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	svc, drivers := newTestService(t)
	ctx := context.Background()
	located := wednesday
	east := func(km float64) models.Coordinate {
		return geo.Destination(surabayaCenter, 90, km)
	}

	for _, d := range []models.Driver{
		{UserID: 1, Name: "far", Status: models.DriverAvailable, Location: east(8), Rating: 5},
		{UserID: 2, Name: "near-low", Status: models.DriverAvailable, Location: east(2), Rating: 4.2},
		{UserID: 3, Name: "near-high", Status: models.DriverAvailable, Location: east(2), Rating: 4.9},
		{UserID: 4, Name: "outside", Status: models.DriverAvailable, Location: east(15), Rating: 5},
		{UserID: 5, Name: "busy", Status: models.DriverBusy, Location: east(1), Rating: 5},
		{UserID: 6, Name: "offline", Status: models.DriverOffline, Location: east(1), Rating: 5},
	} {
		d := d
		d.LocationUpdatedAt = &located
		drivers.Save(ctx, &d)
	}
	drivers.Save(ctx, &models.Driver{UserID: 7, Name: "never-located", Status: models.DriverAvailable})

	res, err := svc.Available(ctx, surabayaCenter, 0)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if res.RadiusKm != DefaultRadiusKm || res.SearchLocation != surabayaCenter {
		t.Errorf("search = %v within %v", res.SearchLocation, res.RadiusKm)
	}
	var names []string
	for _, d := range res.Drivers {
		names = append(names, d.Name)
	}
	want := []string{"near-high", "near-low", "far"}
	if res.Total != len(want) || len(names) != len(want) {
		t.Fatalf("drivers = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("drivers = %v, want %v", names, want)
			break
		}
	}
	if d := res.Drivers[2].DistanceKm; d < 7.9 || d > 8.1 {
		t.Errorf("far driver distance = %.3f km", d)
	}

	wide, _ := svc.Available(ctx, surabayaCenter, 20)
	if wide.Total != 4 {
		t.Errorf("20 km radius found %d drivers", wide.Total)
	}

	for _, radius := range []float64{-1, MaxRadiusKm + 1} {
		if _, err := svc.Available(ctx, surabayaCenter, radius); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("radius %v: expected ErrInvalidRadius, got %v", radius, err)
		}
	}
	if _, err := svc.Available(ctx, models.Coordinate{Lat: 0, Lng: 200}, 5); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestClaimCreatesProfileAndRejectsSecondOrder(t *testing.T) {
	svc, _ := newTestService(t, "budi")
	ctx := context.Background()

	if err := svc.Claim(ctx, 1, "order-1"); err != nil {
		t.Fatalf("Claim without a profile: %v", err)
	}
	if err := svc.Claim(ctx, 1, "order-2"); !errors.Is(err, ErrDriverBusy) {
		t.Errorf("expected ErrDriverBusy, got %v", err)
	}
	if err := svc.Release(ctx, 1, "order-1", false); err != nil {
		t.Fatalf("Release: %v", err)
	}
	d, _ := svc.Profile(ctx, 1)
	if d.Status != models.DriverAvailable || d.TotalDeliveries != 0 {
		t.Errorf("after cancelled delivery = %+v", d)
	}
}
