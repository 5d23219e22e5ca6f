package tracking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"pizza-delivery-api/models"
	"pizza-delivery-api/scheduler"
)

var (
	ErrNoSession    = errors.New("no active tracking session for order")
	ErrInvalidState = errors.New("invalid delivery state")
)

type session struct {
	orderID string
	mu      sync.Mutex
	sim     *Simulator
	task    *scheduler.Task
	updated time.Time
}

// Tracker owns one simulated driver per order being delivered. Each session
// is advanced by its own scheduled task; commands and ticks for a session are
// serialized on the session lock.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	hub      *Hub
	interval time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// NewTracker ticks every interval. A zero seed seeds from the clock.
func NewTracker(interval time.Duration, seed int64) *Tracker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Tracker{
		sessions: make(map[string]*session),
		hub:      NewHub(),
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
}

func (t *Tracker) sessionRand() *rand.Rand {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return rand.New(rand.NewSource(t.rng.Int63()))
}

// StartTracking places a driver in the normal state and starts ticking.
// Starting an order that is already tracked returns its current position.
func (t *Tracker) StartTracking(orderID string, customer models.Coordinate) models.DriverPosition {
	t.mu.Lock()
	if s, ok := t.sessions[orderID]; ok {
		t.mu.Unlock()
		return t.snapshot(s)
	}
	s := &session{
		orderID: orderID,
		sim:     NewSimulator(t.sessionRand(), customer, models.DeliveryNormal),
		updated: t.now(),
	}
	t.sessions[orderID] = s
	s.task = scheduler.Every(context.Background(), t.interval, func(ctx context.Context) bool {
		return t.tick(s)
	})
	t.mu.Unlock()

	log.Printf("tracking started for order %s", orderID)
	p := t.snapshot(s)
	t.hub.Publish(p)
	return p
}

func (t *Tracker) tick(s *session) bool {
	s.mu.Lock()
	_, done := s.sim.Tick()
	s.updated = t.now()
	p := t.positionLocked(s)
	s.mu.Unlock()

	t.hub.Publish(p)
	if done {
		log.Printf("driver arrived for order %s", s.orderID)
	}
	return done
}

// StopTracking ends the session and closes its subscriptions. Stopping an
// order that is not tracked is a no-op.
func (t *Tracker) StopTracking(orderID string) {
	t.mu.Lock()
	s, ok := t.sessions[orderID]
	if ok {
		delete(t.sessions, orderID)
		// Closed under t.mu so Subscribe cannot register after the close.
		t.hub.CloseOrder(orderID)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	s.task.Stop()
	log.Printf("tracking stopped for order %s", orderID)
}

// SetState re-places the driver for state and publishes the new position.
func (t *Tracker) SetState(orderID string, state models.DeliveryState) (models.DriverPosition, error) {
	if !state.Valid() {
		return models.DriverPosition{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	s, err := t.get(orderID)
	if err != nil {
		return models.DriverPosition{}, err
	}

	s.mu.Lock()
	s.sim.Place(state)
	s.updated = t.now()
	p := t.positionLocked(s)
	s.mu.Unlock()

	t.hub.Publish(p)
	return p, nil
}

func (t *Tracker) Position(orderID string) (models.DriverPosition, error) {
	s, err := t.get(orderID)
	if err != nil {
		return models.DriverPosition{}, err
	}
	return t.snapshot(s), nil
}

// Subscribe streams updates for orderID until unsubscribed or the session stops.
func (t *Tracker) Subscribe(orderID string) (<-chan models.DriverPosition, func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[orderID]; !ok {
		return nil, nil, ErrNoSession
	}
	ch, cancel := t.hub.Subscribe(orderID)
	return ch, cancel, nil
}

func (t *Tracker) Tracking(orderID string) bool {
	_, err := t.get(orderID)
	return err == nil
}

// Sessions lists the tracked order ids.
func (t *Tracker) Sessions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Close stops every session.
func (t *Tracker) Close() {
	for _, id := range t.Sessions() {
		t.StopTracking(id)
	}
}

func (t *Tracker) get(orderID string) (*session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[orderID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

func (t *Tracker) snapshot(s *session) models.DriverPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.positionLocked(s)
}

func (t *Tracker) positionLocked(s *session) models.DriverPosition {
	d := s.sim.DistanceKm()
	return models.DriverPosition{
		OrderID:    s.orderID,
		Position:   s.sim.Position(),
		Customer:   s.sim.Customer(),
		State:      s.sim.State(),
		DistanceKm: d,
		ETAMinutes: ETAMinutes(d),
		Done:       s.sim.Done(),
		UpdatedAt:  s.updated,
	}
}
