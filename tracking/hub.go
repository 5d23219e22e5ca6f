package tracking

import (
	"sync"

	"pizza-delivery-api/models"
)

const subscriberBuffer = 8

type subscriber struct {
	ch chan models.DriverPosition
}

// Hub fans driver positions out to per-order subscribers. A slow subscriber
// loses its oldest buffered update rather than blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe returns a channel of updates for orderID and a function that
// releases it. The channel is closed on unsubscribe or when the order's
// tracking ends.
func (h *Hub) Subscribe(orderID string) (<-chan models.DriverPosition, func()) {
	s := &subscriber{ch: make(chan models.DriverPosition, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[*subscriber]struct{})
	}
	h.subs[orderID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[orderID]; ok {
				if _, ok := set[s]; ok {
					delete(set, s)
					close(s.ch)
				}
				if len(set) == 0 {
					delete(h.subs, orderID)
				}
			}
		})
	}
}

func (h *Hub) Publish(p models.DriverPosition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[p.OrderID] {
		select {
		case s.ch <- p:
		default:
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- p:
			default:
			}
		}
	}
}

// CloseOrder closes every subscription of orderID.
func (h *Hub) CloseOrder(orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[orderID] {
		close(s.ch)
	}
	delete(h.subs, orderID)
}

func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}
