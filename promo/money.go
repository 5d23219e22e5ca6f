package promo

import (
	"github.com/dustin/go-humanize"
)

// FormatIDR renders an amount the way receipts show it, e.g. Rp150.000.
func FormatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "Rp" + humanize.FormatInteger("#.###,", int(amount))
}
