package promo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

// Service is the promo facade used by the cart, checkout and HTTP layers.
// The catalog is fetched on every call.
type Service struct {
	catalog repository.CatalogRepository
	usage   repository.UsageRepository
	now     func() time.Time

	// serializes apply so the idempotency lookup and the append are atomic
	mu sync.Mutex
}

func NewService(catalog repository.CatalogRepository, usage repository.UsageRepository) *Service {
	return &Service{catalog: catalog, usage: usage, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request carries the order context of a validate or apply call.
type Request struct {
	UserID      uint
	OrderAmount int64
	Categories  []string
	OrderID     string
}

func (s *Service) context(ctx context.Context, req Request) (Context, []models.PromoCode, error) {
	catalog, err := s.catalog.Promos(ctx)
	if err != nil {
		return Context{}, nil, wrapProvider("load promos", err)
	}
	history, err := s.usage.FindByUser(ctx, req.UserID)
	if err != nil {
		return Context{}, nil, wrapProvider("load promo usage", err)
	}
	return Context{
		UserID:       req.UserID,
		OrderAmount:  req.OrderAmount,
		Categories:   req.Categories,
		UsageHistory: history,
		Now:          s.now(),
	}, catalog, nil
}

func wrapProvider(op string, err error) error {
	var pe *repository.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &repository.ProviderError{Op: op, Err: err}
}

// ValidatePromoCode checks code against the live catalog and the user's
// usage history without recording anything.
func (s *Service) ValidatePromoCode(ctx context.Context, code string, req Request) (*Validation, error) {
	pctx, catalog, err := s.context(ctx, req)
	if err != nil {
		return nil, err
	}
	return Validate(catalog, code, pctx)
}

// ApplyPromoCode validates code and appends a usage record. Applying the
// same promo to the same order twice returns the recorded discount without
// appending again. An empty OrderID gets a fresh one.
func (s *Service) ApplyPromoCode(ctx context.Context, code string, req Request) (*Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.OrderID == "" {
		req.OrderID = uuid.NewString()
	}
	pctx, catalog, err := s.context(ctx, req)
	if err != nil {
		return nil, err
	}
	p, err := Find(catalog, code)
	if err != nil {
		return nil, err
	}

	prev, err := s.usage.FindForOrder(ctx, req.UserID, p.ID, req.OrderID)
	switch {
	case err == nil:
		d := CalculateDiscount(*p, req.OrderAmount)
		d.Amount = prev.DiscountAmount
		d.FormattedAmount = FormatIDR(prev.DiscountAmount)
		return &Validation{Promo: *p, Discount: d, OrderID: req.OrderID}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, wrapProvider("load promo usage", err)
	}

	if err := Check(*p, pctx); err != nil {
		return nil, err
	}
	v := &Validation{Promo: *p, Discount: CalculateDiscount(*p, req.OrderAmount), OrderID: req.OrderID}

	rec := &models.PromoUsageRecord{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		PromoID:        p.ID,
		Code:           p.Code,
		OrderID:        req.OrderID,
		DiscountAmount: v.Discount.Amount,
		UsedAt:         pctx.Now,
	}
	if err := s.usage.Append(ctx, rec); err != nil {
		return nil, wrapProvider("append promo usage", err)
	}
	return v, nil
}

// ReleaseOrder gives back the promo usage recorded for an order that was
// never placed, so the customer can apply the same promo again.
func (s *Service) ReleaseOrder(ctx context.Context, userID uint, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.usage.Remove(ctx, userID, orderID); err != nil {
		return wrapProvider("release promo usage", err)
	}
	return nil
}

// Listing is the available-promos response.
type Listing struct {
	Promos     []Annotated `json:"promos"`
	Total      int         `json:"total"`
	Featured   int         `json:"featured"`
	Applicable int         `json:"applicable"`
}

func (s *Service) GetAvailablePromos(ctx context.Context, userID uint, opts ListOptions) (*Listing, error) {
	pctx, catalog, err := s.context(ctx, Request{UserID: userID})
	if err != nil {
		return nil, err
	}
	promos := Annotate(catalog, pctx, opts)
	l := &Listing{Promos: promos, Total: len(promos)}
	for _, p := range promos {
		if p.Featured {
			l.Featured++
		}
		if p.Applicable {
			l.Applicable++
		}
	}
	return l, nil
}

// GetPromoByCode returns a promo whether or not it is currently active.
func (s *Service) GetPromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	catalog, err := s.catalog.Promos(ctx)
	if err != nil {
		return nil, wrapProvider("load promos", err)
	}
	for _, p := range catalog {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Code: code, Message: "Promo code not found"}
}

// HistoryEntry is one usage record joined with its promo.
type HistoryEntry struct {
	models.PromoUsageRecord
	Title           string `json:"title"`
	FormattedAmount string `json:"formatted_amount"`
}

type History struct {
	Usages                []HistoryEntry `json:"usages"`
	TotalSavings          int64          `json:"total_savings"`
	FormattedTotalSavings string         `json:"formatted_total_savings"`
}

// UserHistory lists the user's promo usages, newest first. A zero from or
// to leaves that side of the range open.
func (s *Service) UserHistory(ctx context.Context, userID uint, from, to time.Time) (*History, error) {
	recs, err := s.usage.FindByUser(ctx, userID)
	if err != nil {
		return nil, wrapProvider("load promo usage", err)
	}
	catalog, err := s.catalog.Promos(ctx)
	if err != nil {
		return nil, wrapProvider("load promos", err)
	}
	titles := make(map[string]string, len(catalog))
	for _, p := range catalog {
		titles[p.ID] = p.Title
	}

	h := &History{Usages: []HistoryEntry{}}
	for _, r := range recs {
		if !from.IsZero() && r.UsedAt.Before(from) {
			continue
		}
		if !to.IsZero() && r.UsedAt.After(to) {
			continue
		}
		h.Usages = append(h.Usages, HistoryEntry{
			PromoUsageRecord: r,
			Title:            titles[r.PromoID],
			FormattedAmount:  FormatIDR(r.DiscountAmount),
		})
		h.TotalSavings += r.DiscountAmount
	}
	sort.SliceStable(h.Usages, func(i, j int) bool { return h.Usages[i].UsedAt.After(h.Usages[j].UsedAt) })
	h.FormattedTotalSavings = FormatIDR(h.TotalSavings)
	return h, nil
}
