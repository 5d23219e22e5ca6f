package models

import (
	"sort"
	"time"
)

type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// AppliedPromo is the discount snapshot taken when a promo was applied to a cart.
type AppliedPromo struct {
	Code       string `json:"code"`
	PromoID    string `json:"promo_id"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
	Percentage int    `json:"percentage"`
}

type Cart struct {
	UserID       uint          `json:"user_id"`
	Items        []CartItem    `json:"items"`
	AppliedPromo *AppliedPromo `json:"applied_promo"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Categories returns the distinct item categories in a stable order.
func (c *Cart) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range c.Items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Cart) DiscountAmount() int64 {
	if c.AppliedPromo == nil {
		return 0
	}
	return c.AppliedPromo.Amount
}

func (c *Cart) FinalTotal() int64 {
	total := c.Subtotal() - c.DiscountAmount()
	if total < 0 {
		return 0
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
