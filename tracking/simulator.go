// Package tracking simulates a delivery driver converging on the customer
// and fans the positions out to subscribers.
package tracking

import (
	"math"
	"math/rand"

	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
)

const (
	// ArrivalKm ends continuous motion.
	ArrivalKm = 0.1
	// StepFraction of the remaining distance covered per tick.
	StepFraction = 0.1
	// AverageSpeedKmh is the urban speed assumed for ETA estimates.
	AverageSpeedKmh = 30.0
)

// Simulator holds one driver position relative to one customer. It is not
// safe for concurrent use; the tracker serializes access per session.
type Simulator struct {
	rng      *rand.Rand
	customer models.Coordinate
	driver   models.Coordinate
	state    models.DeliveryState
	done     bool
}

// NewSimulator places a driver for customer in the given state.
func NewSimulator(rng *rand.Rand, customer models.Coordinate, state models.DeliveryState) *Simulator {
	s := &Simulator{rng: rng, customer: customer}
	s.Place(state)
	return s
}

// Place re-rolls the driver position for state: 2-5 km away when normal,
// 0.1-0.5 km when near, on the customer when arrived. The bearing is always
// fresh. Placement is a jump, it does not restart a finished session.
func (s *Simulator) Place(state models.DeliveryState) {
	var km float64
	switch state {
	case models.DeliveryArrived:
		km = 0
	case models.DeliveryNear:
		km = 0.1 + s.rng.Float64()*0.4
	default:
		state = models.DeliveryNormal
		km = 2 + s.rng.Float64()*3
	}
	bearing := s.rng.Float64() * 360
	s.state = state
	if km == 0 {
		s.driver = s.customer
		return
	}
	s.driver = geo.Destination(s.customer, bearing, km)
}

// MoveTo puts the driver at an explicit coordinate.
func (s *Simulator) MoveTo(c models.Coordinate) {
	s.driver = c
}

// Tick advances the driver StepFraction of the way to the customer along the
// current bearing. Once within ArrivalKm the simulator is finished and every
// later tick leaves the position untouched.
func (s *Simulator) Tick() (models.Coordinate, bool) {
	if s.done {
		return s.driver, true
	}
	d := s.DistanceKm()
	if d <= ArrivalKm {
		s.done = true
		return s.driver, true
	}
	bearing := geo.BearingDeg(s.driver, s.customer)
	s.driver = geo.Destination(s.driver, bearing, d*StepFraction)
	return s.driver, false
}

func (s *Simulator) DistanceKm() float64 {
	return geo.HaversineKm(s.driver, s.customer)
}

// ETAMinutes is ceil(distance / speed), in minutes.
func (s *Simulator) ETAMinutes() int {
	return ETAMinutes(s.DistanceKm())
}

func ETAMinutes(km float64) int {
	return int(math.Ceil(km / AverageSpeedKmh * 60))
}

func (s *Simulator) Position() models.Coordinate { return s.driver }
func (s *Simulator) State() models.DeliveryState { return s.state }
func (s *Simulator) Done() bool                  { return s.done }
func (s *Simulator) Customer() models.Coordinate { return s.customer }
