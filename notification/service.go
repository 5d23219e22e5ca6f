// Package notification keeps each user's in-app inbox and turns order and
// payment events into inbox entries.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"pizza-delivery-api/models"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
)

var (
	ErrUnknownTemplate = errors.New("unknown notification template")
	ErrUnknownStatus   = errors.New("no notification for order status")
	ErrInvalidType     = errors.New("invalid notification type")
	ErrInvalidTimezone = errors.New("unknown timezone")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type template struct {
	Title    string
	Message  string
	Type     models.NotificationType
	Severity models.Severity
}

var templates = map[string]template{
	"order_placed":    {"Order Placed! 🎉", "Your order #{orderNumber} has been placed. Complete the payment to confirm it.", models.NotifyOrderUpdate, models.SeveritySuccess},
	"order_confirmed": {"Order Confirmed ✅", "Order #{orderNumber} is confirmed and waiting for the kitchen.", models.NotifyOrderUpdate, models.SeveritySuccess},
	"order_preparing": {"Order Being Prepared 🍕", "Your pizza is being prepared by our chef.", models.NotifyDeliveryUpdate, models.SeverityInfo},
	"driver_en_route": {"Driver is On the Way! 🛵", "{driverName} is heading to your location.", models.NotifyDeliveryUpdate, models.SeverityInfo},
	"order_delivered": {"Order Delivered! ✅", "Your order has been delivered. Enjoy your meal!", models.NotifyDeliveryUpdate, models.SeveritySuccess},
	"order_cancelled": {"Order Cancelled", "Your order #{orderNumber} has been cancelled.", models.NotifyOrderUpdate, models.SeverityWarn},
	"payment_success": {"Payment Successful! 💳", "Your payment of {amount} has been processed successfully.", models.NotifyPaymentUpdate, models.SeveritySuccess},
	"payment_failed":  {"Payment Failed", "Your payment of {amount} could not be processed: {reason}.", models.NotifyPaymentUpdate, models.SeverityError},
}

var statusTemplates = map[models.OrderStatus]string{
	models.StatusPending:    "order_placed",
	models.StatusConfirmed:  "order_confirmed",
	models.StatusPreparing:  "order_preparing",
	models.StatusOnDelivery: "driver_en_route",
	models.StatusDelivered:  "order_delivered",
	models.StatusCancelled:  "order_cancelled",
}

// Data fills the {placeholders} of a template.
type Data map[string]string

func render(text string, data Data) string {
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// OrderNumber is the short form of an order id shown to customers.
func OrderNumber(orderID string) string {
	if len(orderID) > 8 {
		orderID = orderID[:8]
	}
	return strings.ToUpper(orderID)
}

type Service struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewService(repo repository.NotificationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DefaultPreferences enables order, delivery and payment updates.
func DefaultPreferences(userID uint) *models.NotificationPreferences {
	return &models.NotificationPreferences{
		UserID:       userID,
		EnabledTypes: []models.NotificationType{models.NotifyOrderUpdate, models.NotifyDeliveryUpdate, models.NotifyPaymentUpdate},
		Language:     "id",
		Timezone:     "Asia/Jakarta",
	}
}

func (s *Service) Preferences(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	p, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	return p, err
}

// PreferencesUpdate changes only the fields that are set.
type PreferencesUpdate struct {
	EnabledTypes []models.NotificationType `json:"enabled_types"`
	Language     string                    `json:"language"`
	Timezone     string                    `json:"timezone"`
}

func (s *Service) UpdatePreferences(ctx context.Context, userID uint, u PreferencesUpdate) (*models.NotificationPreferences, error) {
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.EnabledTypes != nil {
		for _, t := range u.EnabledTypes {
			if !validType(t) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
			}
		}
		p.EnabledTypes = u.EnabledTypes
	}
	if u.Language != "" {
		p.Language = u.Language
	}
	if u.Timezone != "" {
		if _, err := time.LoadLocation(u.Timezone); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, u.Timezone, err)
		}
		p.Timezone = u.Timezone
	}
	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validType(t models.NotificationType) bool {
	for _, known := range models.NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Notify renders templateID for the user. It returns nil without storing
// anything when the user has turned the template's type off.
func (s *Service) Notify(ctx context.Context, userID uint, templateID, orderID string, data Data) (*models.Notification, error) {
	tpl, ok := templates[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !prefs.Enabled(tpl.Type) {
		return nil, nil
	}
	n := &models.Notification{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       tpl.Type,
		Severity:   tpl.Severity,
		TemplateID: templateID,
		Title:      render(tpl.Title, data),
		Message:    render(tpl.Message, data),
		OrderID:    orderID,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	log.Printf("🔔 Notified user %d: %s", userID, n.Title)
	return n, nil
}

// OrderStatusChanged tells the customer about the order's current status.
// driverName fills the en-route message and may be empty.
func (s *Service) OrderStatusChanged(ctx context.Context, o *models.Order, driverName string) (*models.Notification, error) {
	templateID, ok := statusTemplates[o.Status]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, o.Status)
	}
	if driverName == "" {
		driverName = "Your driver"
	}
	return s.Notify(ctx, o.CustomerID, templateID, o.ID, Data{
		"orderNumber": OrderNumber(o.ID),
		"driverName":  driverName,
	})
}

// PaymentSettled tells the customer whether the payment went through.
func (s *Service) PaymentSettled(ctx context.Context, customerID uint, p *models.Payment) (*models.Notification, error) {
	templateID := "payment_success"
	reason := p.FailureReason
	if p.Status != models.PaymentPaid {
		templateID = "payment_failed"
		if reason == "" {
			reason = strings.ToLower(string(p.Status))
		}
	}
	return s.Notify(ctx, customerID, templateID, p.OrderID, Data{
		"amount": promo.FormatIDR(p.Amount),
		"reason": reason,
	})
}

// Filter narrows an inbox listing. Page starts at 1.
type Filter struct {
	Type       models.NotificationType `form:"type"`
	UnreadOnly bool                    `form:"unread"`
	Page       int                     `form:"page"`
	Limit      int                     `form:"limit"`
}

type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int                   `json:"total"`
	UnreadCount   int                   `json:"unread_count"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int                   `json:"total_pages"`
}

// List returns one page of the user's notifications, newest first.
// UnreadCount always covers the whole inbox.
func (s *Service) List(ctx context.Context, userID uint, f Filter) (*Inbox, error) {
	if f.Type != "" && !validType(f.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, f.Type)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	all, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	inbox := &Inbox{Notifications: []models.Notification{}, Page: f.Page, Limit: f.Limit}
	var matched []models.Notification
	for _, n := range all {
		if !n.Read {
			inbox.UnreadCount++
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		matched = append(matched, n)
	}
	inbox.Total = len(matched)
	inbox.TotalPages = (inbox.Total + f.Limit - 1) / f.Limit
	if start := (f.Page - 1) * f.Limit; start < len(matched) {
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		inbox.Notifications = matched[start:end]
	}
	return inbox, nil
}

func (s *Service) MarkRead(ctx context.Context, userID uint, id string) error {
	return s.repo.MarkRead(ctx, userID, id, s.now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

func (s *Service) Delete(ctx context.Context, userID uint, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
