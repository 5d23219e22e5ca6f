// Package cart keeps each customer's shopping cart with a sliding TTL.
package cart

import (
	"context"
	"sync"
	"time"

	"pizza-delivery-api/models"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 24 * time.Hour

// Store persists carts by user. Get returns an empty cart when nothing is
// stored or the stored cart has expired.
type Store interface {
	Get(ctx context.Context, userID uint) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
	Delete(ctx context.Context, userID uint) error
}

func emptyCart(userID uint) *models.Cart {
	return &models.Cart{UserID: userID, Items: []models.CartItem{}}
}

type memoryEntry struct {
	cart      models.Cart
	expiresAt time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[uint]memoryEntry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, carts: map[uint]memoryEntry{}}
}

// WithClock replaces the wall clock used for expiry.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func copyCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	if c.AppliedPromo != nil {
		p := *c.AppliedPromo
		c.AppliedPromo = &p
	}
	return &c
}

func (m *MemoryStore) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.carts[userID]
	if !ok {
		return emptyCart(userID), nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.carts, userID)
		return emptyCart(userID), nil
	}
	return copyCart(e.cart), nil
}

func (m *MemoryStore) Save(ctx context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = memoryEntry{cart: *copyCart(*c), expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
