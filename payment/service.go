// Package payment opens gateway invoices for orders and settles them from
// webhooks or polling.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
	"pizza-delivery-api/scheduler"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrInvalidStatus = errors.New("invalid payment status")
)

const Currency = "IDR"

var methodChannels = map[string][]string{
	"credit_card":   {"CREDIT_CARD"},
	"bank_transfer": {"BCA", "BNI", "BRI", "MANDIRI", "PERMATA"},
	"ewallet":       {"OVO", "DANA", "LINKAJA", "SHOPEEPAY"},
	"qris":          {"QRIS"},
}

// Channels lists the gateway channels enabled for a payment method.
// Unknown methods fall back to credit card.
func Channels(method string) []string {
	if ch, ok := methodChannels[method]; ok {
		return append([]string{}, ch...)
	}
	return []string{"CREDIT_CARD"}
}

// NewExternalID builds a gateway reference like pizza-order-1760000000000-1a2b3c4d.
func NewExternalID(now time.Time) string {
	return fmt.Sprintf("pizza-order-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// Listener is told about every payment that reaches a final status.
type Listener interface {
	PaymentSettled(ctx context.Context, p *models.Payment) error
}

type Service struct {
	repo     repository.PaymentRepository
	provider Provider
	listener Listener
	now      func() time.Time
}

func NewService(repo repository.PaymentRepository, provider Provider) *Service {
	return &Service{repo: repo, provider: provider, now: time.Now}
}

// SetListener registers the order side. It must be called before the
// service handles webhooks.
func (s *Service) SetListener(l Listener) {
	s.listener = l
}

// Create opens an invoice for an order and stores it as PENDING.
func (s *Service) Create(ctx context.Context, orderID string, amount int64, method string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if method == "" {
		method = "credit_card"
	}
	p := &models.Payment{
		ExternalID: NewExternalID(s.now()),
		OrderID:    orderID,
		Amount:     amount,
		Currency:   Currency,
		Method:     method,
		Channels:   Channels(method),
		Status:     models.PaymentPending,
	}
	url, err := s.provider.CreateInvoice(ctx, Invoice{
		ExternalID: p.ExternalID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Method:     p.Method,
		Channels:   p.Channels,
	})
	if err != nil {
		return nil, &repository.ProviderError{Op: "create invoice", Err: err}
	}
	p.CheckoutURL = url
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Status(ctx context.Context, externalID string) (*models.Payment, error) {
	return s.repo.Get(ctx, externalID)
}

// ParseStatus accepts gateway status strings in any case.
func ParseStatus(raw string) (models.PaymentStatus, error) {
	switch st := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(raw))); st {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentExpired:
		return st, nil
	case "SETTLED":
		return models.PaymentPaid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Webhook is the gateway callback body.
type Webhook struct {
	ExternalID    string     `json:"external_id" binding:"required"`
	Status        string     `json:"status" binding:"required"`
	FailureReason string     `json:"failure_reason"`
	PaidAt        *time.Time `json:"paid_at"`
}

// HandleWebhook applies a gateway callback. Callbacks for a payment that is
// already final are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, w Webhook) (*models.Payment, error) {
	status, err := ParseStatus(w.Status)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, w.ExternalID)
	if err != nil {
		return nil, err
	}
	if p.Status.Final() || status == models.PaymentPending {
		return p, nil
	}
	return s.settle(ctx, p, status, w.FailureReason, w.PaidAt)
}

func (s *Service) settle(ctx context.Context, p *models.Payment, status models.PaymentStatus, reason string, paidAt *time.Time) (*models.Payment, error) {
	p.Status = status
	p.FailureReason = reason
	if status == models.PaymentPaid {
		if paidAt == nil {
			t := s.now()
			paidAt = &t
		}
		p.PaidAt = paidAt
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("💳 Payment %s for order %s is %s", p.ExternalID, p.OrderID, p.Status)

	if s.listener != nil {
		if err := s.listener.PaymentSettled(ctx, p); err != nil {
			return p, fmt.Errorf("notify order %s: %w", p.OrderID, err)
		}
	}
	return p, nil
}

// SyncPending asks the gateway about every PENDING payment and settles the
// ones that have moved. It returns how many were settled.
func (s *Service) SyncPending(ctx context.Context) (int, error) {
	pending, err := s.repo.FindByStatus(ctx, models.PaymentPending)
	if err != nil {
		return 0, err
	}
	settled := 0
	var errs []error
	for i := range pending {
		p := &pending[i]
		status, reason, err := s.provider.InvoiceStatus(ctx, p.ExternalID)
		if err != nil {
			errs = append(errs, &repository.ProviderError{Op: "invoice status " + p.ExternalID, Err: err})
			continue
		}
		if !status.Final() {
			continue
		}
		if _, err := s.settle(ctx, p, status, reason, nil); err != nil {
			errs = append(errs, err)
			continue
		}
		settled++
	}
	return settled, errors.Join(errs...)
}

// StartWatcher polls pending payments every interval until ctx ends or the
// returned task is stopped.
func (s *Service) StartWatcher(ctx context.Context, interval time.Duration) *scheduler.Task {
	return scheduler.Every(ctx, interval, func(ctx context.Context) bool {
		n, err := s.SyncPending(ctx)
		if err != nil {
			log.Printf("⚠️  Payment sync: %v", err)
		}
		if n > 0 {
			log.Printf("💳 Payment sync settled %d payment(s)", n)
		}
		return false
	})
}
