package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"pizza-delivery-api/middleware"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"

	"github.com/gin-gonic/gin"
)

// GetPromoByCode returns a promo whether or not it is still running (public)
func (h *Handler) GetPromoByCode(c *gin.Context) {
	p, err := h.Promos.GetPromoByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promo": p})
}

type promoListQuery struct {
	OrderAmount  int64  `form:"order_amount" binding:"min=0"`
	Categories   string `form:"categories"`
	FeaturedOnly bool   `form:"featured"`
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type promoListing struct {
	PromoStatus string `json:"promo_status"`
	*promo.Listing
}

// ListPromos annotates every running promo for the caller, optionally
// against an order amount and comma separated categories. When the promo
// store cannot be read the listing is empty with promo_status "unavailable".
func (h *Handler) ListPromos(c *gin.Context) {
	var q promoListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	listing, err := h.Promos.GetAvailablePromos(c.Request.Context(), middleware.GetUserID(c), promo.ListOptions{
		OrderAmount:  q.OrderAmount,
		Categories:   splitList(q.Categories),
		FeaturedOnly: q.FeaturedOnly,
	})
	var pe *repository.ProviderError
	if errors.As(err, &pe) {
		log.Printf("⚠️  Promo listing degraded: %v", err)
		c.JSON(http.StatusOK, promoListing{
			PromoStatus: "unavailable",
			Listing:     &promo.Listing{Promos: []promo.Annotated{}},
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promoListing{PromoStatus: "available", Listing: listing})
}

type ValidatePromoRequest struct {
	Code        string   `json:"code" binding:"required"`
	OrderAmount int64    `json:"order_amount" binding:"min=0"`
	Categories  []string `json:"categories"`
}

// ValidatePromo dry-runs a code against an order without recording usage.
func (h *Handler) ValidatePromo(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Promos.ValidatePromoCode(c.Request.Context(), req.Code, promo.Request{
		UserID:      middleware.GetUserID(c),
		OrderAmount: req.OrderAmount,
		Categories:  req.Categories,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "promo": v.Promo, "discount": v.Discount})
}

type historyQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func parseDay(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// PromoHistory lists the caller's promo usages; from and to are YYYY-MM-DD.
func (h *Handler) PromoHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	from, err := parseDay(q.From, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := parseDay(q.To, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}
	hist, err := h.Promos.UserHistory(c.Request.Context(), middleware.GetUserID(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}
