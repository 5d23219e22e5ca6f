package payment

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"pizza-delivery-api/models"
)

var ErrUnknownInvoice = errors.New("unknown invoice")

// Invoice is what the gateway needs to open a checkout page.
type Invoice struct {
	ExternalID string
	Amount     int64
	Currency   string
	Method     string
	Channels   []string
}

// Provider is the payment gateway. Implementations report only
// PENDING, PAID, FAILED or EXPIRED.
type Provider interface {
	CreateInvoice(ctx context.Context, inv Invoice) (checkoutURL string, err error)
	InvoiceStatus(ctx context.Context, externalID string) (models.PaymentStatus, string, error)
}

const checkoutBaseURL = "https://checkout.xendit.co/web/checkout/"

type invoiceState struct {
	status models.PaymentStatus
	reason string
}

// SimulatedProvider is an in-process gateway. Invoices stay PENDING until
// Settle is called.
type SimulatedProvider struct {
	mu       sync.Mutex
	invoices map[string]invoiceState
}

var _ Provider = (*SimulatedProvider)(nil)

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{invoices: map[string]invoiceState{}}
}

func (p *SimulatedProvider) CreateInvoice(ctx context.Context, inv Invoice) (string, error) {
	p.mu.Lock()
	p.invoices[inv.ExternalID] = invoiceState{status: models.PaymentPending}
	p.mu.Unlock()

	q := url.Values{}
	q.Set("external_id", inv.ExternalID)
	q.Set("amount", strconv.FormatInt(inv.Amount, 10))
	q.Set("payment_method", inv.Method)
	return checkoutBaseURL + url.PathEscape(inv.ExternalID) + "?" + q.Encode(), nil
}

func (p *SimulatedProvider) InvoiceStatus(ctx context.Context, externalID string) (models.PaymentStatus, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.invoices[externalID]
	if !ok {
		return "", "", ErrUnknownInvoice
	}
	return st.status, st.reason, nil
}

// Settle moves an invoice to status as if the customer finished checkout.
func (p *SimulatedProvider) Settle(externalID string, status models.PaymentStatus, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.invoices[externalID]; !ok {
		return ErrUnknownInvoice
	}
	p.invoices[externalID] = invoiceState{status: status, reason: reason}
	return nil
}
