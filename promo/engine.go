// Package promo evaluates promo codes against an order: the ordered rule
// chain, discount calculation and the annotated "available promos" listing.
package promo

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pizza-delivery-api/models"
)

// Context is everything a rule may look at.
type Context struct {
	UserID       uint
	OrderAmount  int64
	Categories   []string
	UsageHistory []models.PromoUsageRecord
	Now          time.Time
}

// Discount is the money outcome of a valid promo.
type Discount struct {
	Type            models.DiscountType `json:"type"`
	Value           float64             `json:"value"`
	Amount          int64               `json:"amount"`
	MaxAmount       *int64              `json:"max_amount"`
	Percentage      int                 `json:"percentage"`
	FormattedAmount string              `json:"formatted_amount"`
}

// Validation is a promo that passed every rule, with its discount.
type Validation struct {
	Promo    models.PromoCode `json:"promo"`
	Discount Discount         `json:"discount"`
	OrderID  string           `json:"order_id,omitempty"`
}

// Find looks up an active promo by code, ignoring case.
func Find(catalog []models.PromoCode, code string) (*models.PromoCode, error) {
	for i := range catalog {
		if catalog[i].Active && strings.EqualFold(catalog[i].Code, code) {
			p := catalog[i]
			return &p, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Code: code, Message: "Invalid promo code"}
}

// Validate finds code in catalog, runs the rule chain and computes the discount.
func Validate(catalog []models.PromoCode, code string, ctx Context) (*Validation, error) {
	p, err := Find(catalog, code)
	if err != nil {
		return nil, err
	}
	if err := Check(*p, ctx); err != nil {
		return nil, err
	}
	return &Validation{Promo: *p, Discount: CalculateDiscount(*p, ctx.OrderAmount)}, nil
}

// Check runs the rules in order and returns the first failure.
func Check(p models.PromoCode, ctx Context) error {
	for _, r := range rules {
		if err := r(&p, &ctx); err != nil {
			return err
		}
	}
	return nil
}

type rule func(p *models.PromoCode, ctx *Context) *Error

var rules = []rule{
	checkWindow,
	checkMinimum,
	checkFirstOrder,
	checkUsageLimit,
	checkWeekend,
	checkCombo,
	checkCategories,
}

func checkWindow(p *models.PromoCode, ctx *Context) *Error {
	if ctx.Now.Before(p.ValidFrom) {
		return &Error{Kind: KindNotYetValid, Code: p.Code, Message: "Promo code is not yet valid"}
	}
	if ctx.Now.After(p.ValidUntil) {
		return &Error{Kind: KindExpired, Code: p.Code, Message: "Promo code has expired"}
	}
	return nil
}

func checkMinimum(p *models.PromoCode, ctx *Context) *Error {
	if ctx.OrderAmount < p.MinOrderAmount {
		return &Error{
			Kind:    KindBelowMinimum,
			Code:    p.Code,
			Message: "Minimum order amount is " + FormatIDR(p.MinOrderAmount),
		}
	}
	return nil
}

func checkFirstOrder(p *models.PromoCode, ctx *Context) *Error {
	if p.Restrictions.FirstOrderOnly && len(ctx.UsageHistory) > 0 {
		return &Error{Kind: KindNotFirstOrder, Code: p.Code, Message: "This promo is only valid for first-time orders"}
	}
	return nil
}

func checkUsageLimit(p *models.PromoCode, ctx *Context) *Error {
	limit := p.Restrictions.MaxUsagePerUser
	if limit == nil {
		return nil
	}
	if used := usageCount(p.ID, ctx.UsageHistory); used >= *limit {
		return &Error{
			Kind:    KindUsageLimitReached,
			Code:    p.Code,
			Message: fmt.Sprintf("You have reached the usage limit for this promo (%d/%d)", used, *limit),
		}
	}
	return nil
}

func checkWeekend(p *models.PromoCode, ctx *Context) *Error {
	if !p.Restrictions.WeekendOnly {
		return nil
	}
	if day := ctx.Now.Weekday(); day != time.Saturday && day != time.Sunday {
		return &Error{Kind: KindNotWeekend, Code: p.Code, Message: "This promo is only valid on weekends"}
	}
	return nil
}

func checkCombo(p *models.PromoCode, ctx *Context) *Error {
	if !p.Restrictions.RequiresBothPizzaAndBeverage {
		return nil
	}
	if !hasPizza(ctx.Categories) || !hasBeverage(ctx.Categories) {
		return &Error{Kind: KindComboRequired, Code: p.Code, Message: "This promo requires both pizza and beverage in your order"}
	}
	return nil
}

func checkCategories(p *models.PromoCode, ctx *Context) *Error {
	if len(p.ApplicableCategories) == 0 {
		return nil
	}
	for _, want := range p.ApplicableCategories {
		for _, have := range ctx.Categories {
			if want == have {
				return nil
			}
		}
	}
	return &Error{Kind: KindCategoryMismatch, Code: p.Code, Message: "This promo is not applicable to items in your cart"}
}

func usageCount(promoID string, history []models.PromoUsageRecord) int {
	n := 0
	for _, u := range history {
		if u.PromoID == promoID {
			n++
		}
	}
	return n
}

func hasPizza(categories []string) bool {
	for _, c := range categories {
		if strings.Contains(c, "Pizza") {
			return true
		}
	}
	return false
}

func hasBeverage(categories []string) bool {
	for _, c := range categories {
		if strings.Contains(c, "Beverage") || strings.Contains(c, "Drink") {
			return true
		}
	}
	return false
}

// CalculateDiscount applies the promo value to orderAmount, then clamps the
// result to the promo cap and to the order amount itself.
func CalculateDiscount(p models.PromoCode, orderAmount int64) Discount {
	var amount decimal.Decimal
	switch p.Type {
	case models.DiscountPercentage:
		amount = decimal.NewFromInt(orderAmount).
			Mul(decimal.NewFromFloat(p.Value)).
			Div(decimal.NewFromInt(100))
	case models.DiscountFixed:
		amount = decimal.NewFromFloat(p.Value)
	}
	amount = amount.Round(0)

	if p.MaxDiscountAmount != nil {
		amount = decimal.Min(amount, decimal.NewFromInt(*p.MaxDiscountAmount))
	}
	amount = decimal.Min(amount, decimal.NewFromInt(orderAmount))
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	d := Discount{
		Type:      p.Type,
		Value:     p.Value,
		Amount:    amount.IntPart(),
		MaxAmount: p.MaxDiscountAmount,
	}
	d.FormattedAmount = FormatIDR(d.Amount)

	if p.Type == models.DiscountPercentage {
		d.Percentage = int(math.Round(p.Value))
	} else if orderAmount > 0 {
		d.Percentage = int(math.Round(float64(d.Amount) / float64(orderAmount) * 100))
	}
	return d
}

// ListOptions narrows the available-promos listing. A zero OrderAmount or an
// empty Categories list means the caller does not know it yet, so the rules
// depending on them are not applied.
type ListOptions struct {
	OrderAmount  int64
	Categories   []string
	FeaturedOnly bool
}

// Annotated is a promo as shown in the listing.
type Annotated struct {
	models.PromoCode
	Applicable        bool    `json:"applicable"`
	DisabledReason    *string `json:"disabled_reason"`
	DisabledKind      Kind    `json:"disabled_kind,omitempty"`
	EstimatedDiscount *int64  `json:"estimated_discount,omitempty"`
}

// Annotate reuses the rule chain for the listing. Promos outside their
// validity window are hidden; any other failure marks the promo as not
// applicable with a short reason instead of dropping it. The result is
// sorted applicable first, then featured, then by value descending.
func Annotate(catalog []models.PromoCode, ctx Context, opts ListOptions) []Annotated {
	ctx.OrderAmount = opts.OrderAmount
	ctx.Categories = opts.Categories

	out := make([]Annotated, 0, len(catalog))
	for _, p := range catalog {
		if !p.Active || (opts.FeaturedOnly && !p.Featured) {
			continue
		}
		if checkWindow(&p, &ctx) != nil {
			continue
		}

		a := Annotated{PromoCode: p, Applicable: true}
		if err := checkListing(&p, &ctx, opts); err != nil {
			reason := disabledReason(err, &p, &ctx)
			a.Applicable = false
			a.DisabledReason = &reason
			a.DisabledKind = err.Kind
		} else if opts.OrderAmount > 0 {
			amt := CalculateDiscount(p, opts.OrderAmount).Amount
			a.EstimatedDiscount = &amt
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Applicable != out[j].Applicable {
			return out[i].Applicable
		}
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].Value > out[j].Value
	})
	return out
}

func checkListing(p *models.PromoCode, ctx *Context, opts ListOptions) *Error {
	for i, r := range rules {
		if i == 0 {
			continue // window already filtered
		}
		err := r(p, ctx)
		if err == nil {
			continue
		}
		if err.Kind == KindBelowMinimum && opts.OrderAmount == 0 {
			continue
		}
		if err.Kind == KindCategoryMismatch && len(opts.Categories) == 0 {
			continue
		}
		return err
	}
	return nil
}

func disabledReason(err *Error, p *models.PromoCode, ctx *Context) string {
	switch err.Kind {
	case KindBelowMinimum:
		return "Minimum order: " + FormatIDR(p.MinOrderAmount)
	case KindNotFirstOrder:
		return "For first-time orders only"
	case KindUsageLimitReached:
		return fmt.Sprintf("Usage limit reached (%d/%d)", usageCount(p.ID, ctx.UsageHistory), *p.Restrictions.MaxUsagePerUser)
	case KindNotWeekend:
		return "Valid on weekends only"
	case KindComboRequired:
		return "Requires both pizza and beverage"
	case KindCategoryMismatch:
		return "Not applicable to items in your cart"
	}
	return err.Error()
}
