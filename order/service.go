// Package order runs checkout and the order lifecycle, tying together the
// cart, delivery pricing, promos, payments and driver tracking.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"pizza-delivery-api/cart"
	"pizza-delivery-api/dispatch"
	"pizza-delivery-api/geo"
	"pizza-delivery-api/geolocation"
	"pizza-delivery-api/location"
	"pizza-delivery-api/models"
	"pizza-delivery-api/notification"
	"pizza-delivery-api/payment"
	"pizza-delivery-api/pricing"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
	"pizza-delivery-api/statemachine"
	"pizza-delivery-api/tracking"
)

var (
	ErrForbidden         = errors.New("order belongs to another customer")
	ErrNotOnDelivery     = errors.New("order is not out for delivery")
	ErrAddressMissing    = errors.New("delivery address is required")
	ErrAssignedElsewhere = errors.New("order is assigned to another driver")
	ErrInvalidPeriod     = errors.New("period must be all, week, month or year")
	ErrInvalidStatus     = errors.New("unknown order status")
)

// MinimumOrderError means the cart subtotal is below the serving area's minimum.
type MinimumOrderError struct {
	Minimum  int64
	Subtotal int64
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order is %s, cart subtotal is %s",
		promo.FormatIDR(e.Minimum), promo.FormatIDR(e.Subtotal))
}

// Promo outcomes reported by Checkout.
const (
	PromoNone        = "none"
	PromoApplied     = "applied"
	PromoUnavailable = "unavailable"
)

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Orders    repository.OrderRepository
	Carts     *cart.Service
	Locations *location.Service
	Promos    *promo.Service
	Payments  *payment.Service
	Tracker   *tracking.Tracker
	Locator   *geolocation.Locator
	Drivers   *dispatch.Service
	Notifier  *notification.Service
}

type Service struct {
	Dependencies
	now func() time.Time
}

var _ payment.Listener = (*Service)(nil)

// NewService also registers the service as the payment listener.
func NewService(deps Dependencies) *Service {
	s := &Service{Dependencies: deps, now: time.Now}
	deps.Payments.SetListener(s)
	return s
}

type CheckoutRequest struct {
	DeliveryAddress string             `json:"delivery_address" binding:"required"`
	Location        *models.Coordinate `json:"location"`
	PaymentMethod   string             `json:"payment_method" binding:"omitempty,oneof=credit_card bank_transfer ewallet qris"`
	Notes           string             `json:"notes"`
}

type CheckoutResult struct {
	Order          *models.Order       `json:"order"`
	Payment        *models.Payment     `json:"payment"`
	PromoStatus    string              `json:"promo_status"`
	LocationSource string              `json:"location_source"`
	Geolocation    *geolocation.Result `json:"geolocation,omitempty"`
}

func (s *Service) resolveLocation(ctx context.Context, req CheckoutRequest, res *CheckoutResult) (models.Coordinate, error) {
	if req.Location != nil {
		if err := geo.ValidCoordinate(*req.Location); err != nil {
			return models.Coordinate{}, err
		}
		res.LocationSource = "provided"
		return *req.Location, nil
	}
	g := s.Locator.Locate(ctx, s.Locations.AddressProvider(req.DeliveryAddress))
	res.Geolocation = &g
	res.LocationSource = "geocoded"
	if g.Fallback {
		res.LocationSource = "fallback"
	}
	return g.Coordinate, nil
}

// Checkout turns the customer's cart into a pending order with an open
// payment. The delivery quote uses the subtotal before discount. A promo
// that no longer validates is removed from the cart and fails checkout; an
// unreachable promo catalog lets the order through without the discount.
// The promo usage is given back when the order or its payment cannot be
// created.
func (s *Service) Checkout(ctx context.Context, userID uint, req CheckoutRequest) (*CheckoutResult, error) {
	if req.DeliveryAddress == "" {
		return nil, ErrAddressMissing
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "credit_card"
	}
	view, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	res := &CheckoutResult{PromoStatus: PromoNone}
	point, err := s.resolveLocation(ctx, req, res)
	if err != nil {
		return nil, err
	}

	subtotal := view.Subtotal
	quote, err := s.Locations.Quote(ctx, point, subtotal)
	if err != nil {
		return nil, err
	}
	if !quote.MinimumOrderMet {
		return nil, &MinimumOrderError{Minimum: quote.MinimumOrder, Subtotal: subtotal}
	}

	orderID := uuid.NewString()
	var discount int64
	var promoCode string
	if ap := view.AppliedPromo; ap != nil {
		v, err := s.Promos.ApplyPromoCode(ctx, ap.Code, promo.Request{
			UserID:      userID,
			OrderAmount: subtotal,
			Categories:  view.Categories,
			OrderID:     orderID,
		})
		var pe *repository.ProviderError
		switch {
		case err == nil:
			discount, promoCode = v.Discount.Amount, v.Promo.Code
			res.PromoStatus = PromoApplied
		case errors.As(err, &pe):
			log.Printf("⚠️  Promo %s skipped for user %d: %v", ap.Code, userID, err)
			res.PromoStatus = PromoUnavailable
		default:
			if _, rerr := s.Carts.RemovePromo(ctx, userID); rerr != nil {
				log.Printf("⚠️  Could not drop promo from cart of user %d: %v", userID, rerr)
			}
			return nil, err
		}
	}

	o := &models.Order{
		ID:                  orderID,
		CustomerID:          userID,
		Status:              models.StatusPending,
		Subtotal:            subtotal,
		DeliveryFee:         quote.DeliveryFee,
		OriginalDeliveryFee: quote.OriginalDeliveryFee,
		Discount:            discount,
		Total:               pricing.Total(subtotal, discount, quote),
		PromoCode:           promoCode,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryLocation:    point,
		CoverageAreaID:      quote.Area.ID,
		PaymentMethod:       req.PaymentMethod,
		Notes:               req.Notes,
		StatusHistory: []models.OrderStatusHistory{{
			ToStatus:  models.StatusPending,
			Actor:     string(statemachine.ActorCustomer),
			ChangedBy: userID,
			Note:      "Order placed",
		}},
	}
	if quote.District != nil {
		o.DistrictID = quote.District.ID
	}
	if quote.EstimatedDeliveryTime != nil {
		o.EstimatedTime = *quote.EstimatedDeliveryTime
	}
	for _, it := range view.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Category:  it.Category,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	releasePromo := func() {
		if res.PromoStatus != PromoApplied {
			return
		}
		if err := s.Promos.ReleaseOrder(ctx, userID, orderID); err != nil {
			log.Printf("⚠️  Could not release promo %s of order %s: %v", promoCode, orderID, err)
		}
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		releasePromo()
		return nil, err
	}

	p, err := s.Payments.Create(ctx, o.ID, o.Total, o.PaymentMethod)
	if err != nil {
		if _, cerr := s.Transition(ctx, o.ID, models.StatusCancelled, statemachine.ActorSystem, 0, "payment could not be created"); cerr != nil {
			log.Printf("⚠️  Could not cancel order %s: %v", o.ID, cerr)
		}
		releasePromo()
		return nil, err
	}
	if err := s.Orders.SetPayment(ctx, o.ID, p.ExternalID); err != nil {
		return nil, err
	}
	if err := s.Carts.Clear(ctx, userID); err != nil {
		log.Printf("⚠️  Could not clear cart of user %d: %v", userID, err)
	}

	o, err = s.Orders.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("🍕 Order %s placed by user %d, total %s", o.ID, userID, promo.FormatIDR(o.Total))
	s.notifyStatus(ctx, o)
	res.Order, res.Payment = o, p
	return res, nil
}

// Transition moves an order to status to on behalf of actor. The driver who
// takes an order out for delivery is assigned to it and becomes busy;
// after that only that driver may move the order. Entering on_delivery
// starts driver tracking; delivered and cancelled stop it and free the
// driver. The customer is notified of every change.
func (s *Service) Transition(ctx context.Context, orderID string, to models.OrderStatus, actor statemachine.Actor, changedBy uint, note string) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(o.Status, to, actor); err != nil {
		return nil, err
	}
	if actor == statemachine.ActorDriver && o.DriverID != nil && *o.DriverID != changedBy {
		return nil, ErrAssignedElsewhere
	}
	assign := to == models.StatusOnDelivery && actor == statemachine.ActorDriver && changedBy != 0
	if assign {
		if err := s.Drivers.Claim(ctx, changedBy, orderID); err != nil {
			return nil, err
		}
	}
	h := models.OrderStatusHistory{
		FromStatus: o.Status,
		ToStatus:   to,
		Actor:      string(actor),
		ChangedBy:  changedBy,
		Note:       note,
		CreatedAt:  s.now(),
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, o.Status, h); err != nil {
		if assign {
			if rerr := s.Drivers.Release(ctx, changedBy, orderID, false); rerr != nil {
				log.Printf("⚠️  Could not free driver %d: %v", changedBy, rerr)
			}
		}
		return nil, err
	}
	log.Printf("📦 Order %s: %s → %s by %s", orderID, o.Status, to, actor)
	if assign {
		if err := s.Orders.AssignDriver(ctx, orderID, changedBy, h.CreatedAt); err != nil {
			return nil, err
		}
	}

	switch {
	case to == models.StatusOnDelivery:
		s.Tracker.StartTracking(orderID, o.DeliveryLocation)
	case to.Terminal():
		s.Tracker.StopTracking(orderID)
		if o.DriverID != nil {
			if err := s.Drivers.Release(ctx, *o.DriverID, orderID, to == models.StatusDelivered); err != nil {
				log.Printf("⚠️  Could not free driver %d: %v", *o.DriverID, err)
			}
		}
	}

	updated, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated)
	return updated, nil
}

// notifyStatus tells the customer about the order's status. Failures are
// logged; they never fail the order.
func (s *Service) notifyStatus(ctx context.Context, o *models.Order) {
	var driverName string
	if o.DriverID != nil {
		if d, err := s.Drivers.Profile(ctx, *o.DriverID); err == nil {
			driverName = d.Name
		}
	}
	if _, err := s.Notifier.OrderStatusChanged(ctx, o, driverName); err != nil {
		log.Printf("⚠️  Could not notify customer %d about order %s: %v", o.CustomerID, o.ID, err)
	}
}

// PaymentSettled tells the customer about the payment, then confirms the
// order on PAID and cancels it on FAILED or EXPIRED. Orders that already
// moved on are left alone.
func (s *Service) PaymentSettled(ctx context.Context, p *models.Payment) error {
	o, err := s.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if _, err := s.Notifier.PaymentSettled(ctx, o.CustomerID, p); err != nil {
		log.Printf("⚠️  Could not notify customer %d about payment %s: %v", o.CustomerID, p.ExternalID, err)
	}

	to, note := models.StatusConfirmed, "payment received"
	if p.Status != models.PaymentPaid {
		to, note = models.StatusCancelled, "payment "+string(p.Status)
		if p.FailureReason != "" {
			note += ": " + p.FailureReason
		}
	}
	_, err = s.Transition(ctx, p.OrderID, to, statemachine.ActorSystem, 0, note)
	if errors.Is(err, statemachine.ErrInvalidTransition) {
		log.Printf("⚠️  Payment %s ignored: %v", p.ExternalID, err)
		return nil
	}
	return err
}

func (s *Service) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.Orders.Get(ctx, orderID)
}

// GetForCustomer returns the order only to the customer who placed it.
func (s *Service) GetForCustomer(ctx context.Context, orderID string, customerID uint) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	return s.Orders.FindByCustomer(ctx, customerID)
}

// ListForDriver returns the orders assigned to a driver, optionally only
// those in status.
func (s *Service) ListForDriver(ctx context.Context, driverID uint, status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return s.Orders.FindByDriver(ctx, driverID)
	}
	if !knownStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.Orders.FindByDriver(ctx, driverID, status)
}

func knownStatus(status models.OrderStatus) bool {
	for _, st := range models.AllStatuses {
		if st == status {
			return true
		}
	}
	return false
}

// FavoriteItem is a product ranked by how many units the customer ordered.
type FavoriteItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type Stats struct {
	Period            string                     `json:"period"`
	TotalOrders       int                        `json:"total_orders"`
	TotalSpent        int64                      `json:"total_spent"`
	AverageOrderValue int64                      `json:"average_order_value"`
	FavoriteItems     []FavoriteItem             `json:"favorite_items"`
	OrdersByStatus    map[models.OrderStatus]int `json:"orders_by_status"`
}

const favoriteItemsLimit = 5

var statsPeriods = map[string]time.Duration{
	"all":   0,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

// Stats summarizes the customer's orders placed within period. Cancelled
// orders are counted but add nothing to spending or favorites.
func (s *Service) Stats(ctx context.Context, customerID uint, period string) (*Stats, error) {
	if period == "" {
		period = "all"
	}
	window, ok := statsPeriods[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}
	orders, err := s.Orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	st := &Stats{Period: period, FavoriteItems: []FavoriteItem{}, OrdersByStatus: map[models.OrderStatus]int{}}
	for _, status := range models.AllStatuses {
		st.OrdersByStatus[status] = 0
	}
	since := time.Time{}
	if window > 0 {
		since = s.now().Add(-window)
	}
	favorites := map[string]*FavoriteItem{}
	paid := 0
	for _, o := range orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		st.TotalOrders++
		st.OrdersByStatus[o.Status]++
		if o.Status == models.StatusCancelled {
			continue
		}
		paid++
		st.TotalSpent += o.Total
		for _, it := range o.Items {
			f, ok := favorites[it.ProductID]
			if !ok {
				f = &FavoriteItem{ProductID: it.ProductID, Name: it.Name}
				favorites[it.ProductID] = f
			}
			f.Quantity += it.Quantity
		}
	}
	if paid > 0 {
		st.AverageOrderValue = st.TotalSpent / int64(paid)
	}
	for _, f := range favorites {
		st.FavoriteItems = append(st.FavoriteItems, *f)
	}
	sort.Slice(st.FavoriteItems, func(i, j int) bool {
		a, b := st.FavoriteItems[i], st.FavoriteItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(st.FavoriteItems) > favoriteItemsLimit {
		st.FavoriteItems = st.FavoriteItems[:favoriteItemsLimit]
	}
	return st, nil
}

// ListActive returns the orders a driver can act on.
func (s *Service) ListActive(ctx context.Context) ([]models.Order, error) {
	return s.Orders.FindByStatus(ctx, models.StatusConfirmed, models.StatusPreparing, models.StatusOnDelivery)
}

func (s *Service) Cancel(ctx context.Context, orderID string, customerID uint, reason string) (*models.Order, error) {
	if _, err := s.GetForCustomer(ctx, orderID, customerID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.Transition(ctx, orderID, models.StatusCancelled, statemachine.ActorCustomer, customerID, reason)
}

// Tracking returns the latest driver position for the customer's order.
func (s *Service) Tracking(ctx context.Context, orderID string, customerID uint) (models.DriverPosition, error) {
	if _, err := s.GetForCustomer(ctx, orderID, customerID); err != nil {
		return models.DriverPosition{}, err
	}
	return s.Tracker.Position(orderID)
}

// Subscribe streams driver positions of the customer's order.
func (s *Service) Subscribe(ctx context.Context, orderID string, customerID uint) (<-chan models.DriverPosition, func(), error) {
	if _, err := s.GetForCustomer(ctx, orderID, customerID); err != nil {
		return nil, nil, err
	}
	return s.Tracker.Subscribe(orderID)
}

// Simulate re-places the driver of an order that is out for delivery.
func (s *Service) Simulate(ctx context.Context, orderID string, state models.DeliveryState) (models.DriverPosition, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return models.DriverPosition{}, err
	}
	if o.Status != models.StatusOnDelivery {
		return models.DriverPosition{}, ErrNotOnDelivery
	}
	if !s.Tracker.Tracking(orderID) {
		s.Tracker.StartTracking(orderID, o.DeliveryLocation)
	}
	return s.Tracker.SetState(orderID, state)
}
