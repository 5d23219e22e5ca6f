package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pizza-delivery-api/models"
)

// MemoryCatalog serves a catalog held in memory. Replace swaps the whole
// catalog at once so readers never see a partial update.
type MemoryCatalog struct {
	mu  sync.RWMutex
	cat Catalog
}

func NewMemoryCatalog(c Catalog) *MemoryCatalog {
	return &MemoryCatalog{cat: c}
}

func (m *MemoryCatalog) Replace(c Catalog) {
	m.mu.Lock()
	m.cat = c
	m.mu.Unlock()
}

func (m *MemoryCatalog) Areas(ctx context.Context) ([]models.CoverageArea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CoverageArea(nil), m.cat.Areas...), nil
}

func (m *MemoryCatalog) Districts(ctx context.Context) ([]models.District, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.District(nil), m.cat.Districts...), nil
}

func (m *MemoryCatalog) Promos(ctx context.Context) ([]models.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.PromoCode(nil), m.cat.Promos...), nil
}

func (m *MemoryCatalog) Products(ctx context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.cat.Products...), nil
}

func (m *MemoryCatalog) Addresses(ctx context.Context) ([]models.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Address(nil), m.cat.Addresses...), nil
}

// MemoryUsage is an in-memory usage log.
type MemoryUsage struct {
	mu      sync.RWMutex
	records []models.PromoUsageRecord
}

func NewMemoryUsage(seed ...models.PromoUsageRecord) *MemoryUsage {
	return &MemoryUsage{records: append([]models.PromoUsageRecord(nil), seed...)}
}

func (m *MemoryUsage) FindByUser(ctx context.Context, userID uint) ([]models.PromoUsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.PromoUsageRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryUsage) FindForOrder(ctx context.Context, userID uint, promoID, orderID string) (*models.PromoUsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.UserID == userID && r.PromoID == promoID && r.OrderID == orderID {
			rec := r
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUsage) Append(ctx context.Context, rec *models.PromoUsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == rec.ID {
			return ErrDuplicate
		}
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *MemoryUsage) Remove(ctx context.Context, userID uint, orderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.UserID != userID || r.OrderID != orderID {
			kept = append(kept, r)
		}
	}
	n := len(m.records) - len(kept)
	m.records = kept
	return n, nil
}

// MemoryOrders keeps orders keyed by id.
type MemoryOrders struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	nextID uint
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{orders: make(map[string]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]models.OrderStatusHistory(nil), o.StatusHistory...)
	return &c
}

func (m *MemoryOrders) Create(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	for i := range o.Items {
		m.nextID++
		o.Items[i].ID = m.nextID
		o.Items[i].OrderID = o.ID
	}
	for i := range o.StatusHistory {
		m.nextID++
		o.StatusHistory[i].ID = m.nextID
		o.StatusHistory[i].OrderID = o.ID
		if o.StatusHistory[i].CreatedAt.IsZero() {
			o.StatusHistory[i].CreatedAt = now
		}
	}
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *MemoryOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *MemoryOrders) find(match func(*models.Order) bool) []models.Order {
	var out []models.Order
	for _, o := range m.orders {
		if match(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryOrders) FindByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(o *models.Order) bool { return o.CustomerID == customerID }), nil
}

func (m *MemoryOrders) FindByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := map[models.OrderStatus]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	return m.find(func(o *models.Order) bool { return want[o.Status] }), nil
}

func (m *MemoryOrders) UpdateStatus(ctx context.Context, id string, from models.OrderStatus, h models.OrderStatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrConflict
	}
	m.nextID++
	h.ID = m.nextID
	h.OrderID = id
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	o.Status = h.ToStatus
	o.UpdatedAt = h.CreatedAt
	o.StatusHistory = append(o.StatusHistory, h)
	return nil
}

func (m *MemoryOrders) SetPayment(ctx context.Context, id, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentExternalID = externalID
	return nil
}

func (m *MemoryOrders) AssignDriver(ctx context.Context, id string, driverID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.DriverID = &driverID
	o.AssignedAt = &at
	return nil
}

func (m *MemoryOrders) FindByDriver(ctx context.Context, driverID uint, statuses ...models.OrderStatus) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := map[models.OrderStatus]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	return m.find(func(o *models.Order) bool {
		if o.DriverID == nil || *o.DriverID != driverID {
			return false
		}
		return len(want) == 0 || want[o.Status]
	}), nil
}

// MemoryPayments keeps payments keyed by external id.
type MemoryPayments struct {
	mu       sync.RWMutex
	payments map[string]models.Payment
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{payments: make(map[string]models.Payment)}
}

func (m *MemoryPayments) Create(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ExternalID]; ok {
		return ErrDuplicate
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.payments[p.ExternalID] = *p
	return nil
}

func (m *MemoryPayments) Get(ctx context.Context, externalID string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryPayments) FindByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryPayments) Update(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ExternalID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.payments[p.ExternalID] = *p
	return nil
}

// MemoryUsers assigns sequential ids like an autoincrement column.
type MemoryUsers struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	nextID uint
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[uint]models.User)}
}

func (m *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryDrivers keeps driver profiles keyed by user id.
type MemoryDrivers struct {
	mu      sync.RWMutex
	drivers map[uint]models.Driver
}

func NewMemoryDrivers() *MemoryDrivers {
	return &MemoryDrivers{drivers: make(map[uint]models.Driver)}
}

func (m *MemoryDrivers) Get(ctx context.Context, userID uint) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *MemoryDrivers) Save(ctx context.Context, d *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.drivers[d.UserID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	m.drivers[d.UserID] = *d
	return nil
}

func (m *MemoryDrivers) FindByStatus(ctx context.Context, status models.DriverStatus) ([]models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Driver
	for _, d := range m.drivers {
		if d.Status == status {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryDrivers) Claim(ctx context.Context, userID uint, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[userID]
	if !ok {
		return ErrNotFound
	}
	if d.Status == models.DriverBusy && d.CurrentOrderID != orderID {
		return ErrConflict
	}
	d.Status, d.CurrentOrderID, d.UpdatedAt = models.DriverBusy, orderID, time.Now()
	m.drivers[userID] = d
	return nil
}

func (m *MemoryDrivers) Release(ctx context.Context, userID uint, orderID string, delivered bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[userID]
	if !ok {
		return ErrNotFound
	}
	if d.CurrentOrderID != orderID {
		return nil
	}
	d.Status, d.CurrentOrderID, d.UpdatedAt = models.DriverAvailable, "", time.Now()
	if delivered {
		d.TotalDeliveries++
	}
	m.drivers[userID] = d
	return nil
}

// MemoryNotifications is an in-memory inbox plus preference store.
type MemoryNotifications struct {
	mu    sync.RWMutex
	inbox []models.Notification
	prefs map[uint]models.NotificationPreferences
}

func NewMemoryNotifications() *MemoryNotifications {
	return &MemoryNotifications{prefs: make(map[uint]models.NotificationPreferences)}
}

func (m *MemoryNotifications) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.inbox {
		if existing.ID == n.ID {
			return ErrDuplicate
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.inbox = append(m.inbox, *n)
	return nil
}

func (m *MemoryNotifications) FindByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Notification
	for _, n := range m.inbox {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryNotifications) MarkRead(ctx context.Context, userID uint, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.inbox {
		n := &m.inbox[i]
		if n.ID == id && n.UserID == userID {
			if !n.Read {
				n.Read, n.ReadAt = true, &at
			}
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryNotifications) MarkAllRead(ctx context.Context, userID uint, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for i := range m.inbox {
		n := &m.inbox[i]
		if n.UserID == userID && !n.Read {
			n.Read, n.ReadAt = true, &at
			count++
		}
	}
	return count, nil
}

func (m *MemoryNotifications) Delete(ctx context.Context, userID uint, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.inbox {
		if n.ID == id && n.UserID == userID {
			m.inbox = append(m.inbox[:i], m.inbox[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryNotifications) GetPreferences(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	p.EnabledTypes = append([]models.NotificationType(nil), p.EnabledTypes...)
	return &p, nil
}

func (m *MemoryNotifications) SavePreferences(ctx context.Context, p *models.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now()
	stored := *p
	stored.EnabledTypes = append([]models.NotificationType(nil), p.EnabledTypes...)
	m.prefs[p.UserID] = stored
	return nil
}

var (
	_ CatalogRepository      = (*MemoryCatalog)(nil)
	_ UsageRepository        = (*MemoryUsage)(nil)
	_ OrderRepository        = (*MemoryOrders)(nil)
	_ PaymentRepository      = (*MemoryPayments)(nil)
	_ UserRepository         = (*MemoryUsers)(nil)
	_ DriverRepository       = (*MemoryDrivers)(nil)
	_ NotificationRepository = (*MemoryNotifications)(nil)
)
