// Package dispatch keeps driver availability and positions, and hands
// orders to drivers when they leave the kitchen.
package dispatch

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

var (
	ErrDriverBusy    = errors.New("driver is busy with another order")
	ErrInvalidRadius = errors.New("search radius must be between 0 and 50 km")
)

const (
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 50.0
)

type Service struct {
	drivers repository.DriverRepository
	users   repository.UserRepository
	now     func() time.Time

	// serializes read-modify-write of a profile
	mu sync.Mutex
}

func NewService(drivers repository.DriverRepository, users repository.UserRepository) *Service {
	return &Service{drivers: drivers, users: users, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Profile returns the driver's profile, creating an offline one from the
// user account on first use.
func (s *Service) Profile(ctx context.Context, userID uint) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile(ctx, userID)
}

func (s *Service) profile(ctx context.Context, userID uint) (*models.Driver, error) {
	d, err := s.drivers.Get(ctx, userID)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d = &models.Driver{UserID: u.ID, Name: u.Name, Phone: u.Phone, Status: models.DriverOffline}
	if err := s.drivers.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetOnline puts the driver on or off shift. A driver carrying an order
// cannot go offline, and going online while busy keeps the driver busy.
func (s *Service) SetOnline(ctx context.Context, userID uint, online bool, vehicle *models.Vehicle) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch {
	case online && d.Status == models.DriverOffline:
		d.Status = models.DriverAvailable
	case !online && d.Status == models.DriverBusy:
		return nil, ErrDriverBusy
	case !online:
		d.Status = models.DriverOffline
	}
	if vehicle != nil {
		d.Vehicle = *vehicle
	}
	if err := s.drivers.Save(ctx, d); err != nil {
		return nil, err
	}
	log.Printf("🛵 Driver %d is %s", userID, d.Status)
	return d, nil
}

func (s *Service) UpdateLocation(ctx context.Context, userID uint, c models.Coordinate) (*models.Driver, error) {
	if err := geo.ValidCoordinate(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d.Location, d.LocationUpdatedAt = c, &now
	if err := s.drivers.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Nearby is an available driver with its distance from the search point.
type Nearby struct {
	models.Driver
	DistanceKm float64 `json:"distance_km"`
}

type Search struct {
	Drivers        []Nearby          `json:"drivers"`
	SearchLocation models.Coordinate `json:"search_location"`
	RadiusKm       float64           `json:"search_radius_km"`
	Total          int               `json:"total"`
}

// Available lists available drivers that have reported a position within
// radiusKm of point, nearest first. Equally near drivers are ordered by
// rating, best first. A zero radius means DefaultRadiusKm.
func (s *Service) Available(ctx context.Context, point models.Coordinate, radiusKm float64) (*Search, error) {
	if err := geo.ValidCoordinate(point); err != nil {
		return nil, err
	}
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm < 0 || radiusKm > MaxRadiusKm {
		return nil, ErrInvalidRadius
	}
	drivers, err := s.drivers.FindByStatus(ctx, models.DriverAvailable)
	if err != nil {
		return nil, err
	}

	res := &Search{Drivers: []Nearby{}, SearchLocation: point, RadiusKm: radiusKm}
	for _, d := range drivers {
		if !d.Located() {
			continue
		}
		if km := geo.HaversineKm(point, d.Location); km <= radiusKm {
			res.Drivers = append(res.Drivers, Nearby{Driver: d, DistanceKm: km})
		}
	}
	sort.SliceStable(res.Drivers, func(i, j int) bool {
		a, b := res.Drivers[i], res.Drivers[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.Rating > b.Rating
	})
	res.Total = len(res.Drivers)
	return res, nil
}

// Claim makes the driver busy with orderID.
func (s *Service) Claim(ctx context.Context, userID uint, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.profile(ctx, userID); err != nil {
		return err
	}
	err := s.drivers.Claim(ctx, userID, orderID)
	if errors.Is(err, repository.ErrConflict) {
		return ErrDriverBusy
	}
	return err
}

// Release frees the driver once orderID is delivered or cancelled.
func (s *Service) Release(ctx context.Context, userID uint, orderID string, delivered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drivers.Release(ctx, userID, orderID, delivered)
}
