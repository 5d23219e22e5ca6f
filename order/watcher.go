package order

import (
	"context"
	"log"
	"time"

	"pizza-delivery-api/models"
	"pizza-delivery-api/scheduler"
)

// Reconcile makes tracking sessions match the orders that are out for
// delivery: missing sessions are started and stale ones stopped. It returns
// how many sessions it started and stopped.
func (s *Service) Reconcile(ctx context.Context) (started, stopped int, err error) {
	delivering, err := s.Orders.FindByStatus(ctx, models.StatusOnDelivery)
	if err != nil {
		return 0, 0, err
	}
	want := make(map[string]bool, len(delivering))
	for _, o := range delivering {
		want[o.ID] = true
		if !s.Tracker.Tracking(o.ID) {
			s.Tracker.StartTracking(o.ID, o.DeliveryLocation)
			started++
		}
	}
	for _, id := range s.Tracker.Sessions() {
		if !want[id] {
			s.Tracker.StopTracking(id)
			stopped++
		}
	}
	return started, stopped, nil
}

// StartWatcher reconciles tracking every interval until ctx ends or the
// returned task is stopped.
func (s *Service) StartWatcher(ctx context.Context, interval time.Duration) *scheduler.Task {
	return scheduler.Every(ctx, interval, func(ctx context.Context) bool {
		started, stopped, err := s.Reconcile(ctx)
		if err != nil {
			log.Printf("⚠️  Order watcher: %v", err)
			return false
		}
		if started+stopped > 0 {
			log.Printf("🛵 Order watcher started %d and stopped %d tracking session(s)", started, stopped)
		}
		return false
	})
}
