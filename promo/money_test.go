package promo

import "testing"

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Rp0"},
		{500, "Rp500"},
		{15000, "Rp15.000"},
		{150000, "Rp150.000"},
		{1250000, "Rp1.250.000"},
		{-25000, "-Rp25.000"},
	}
	for _, tt := range tests {
		if got := FormatIDR(tt.in); got != tt.want {
			t.Errorf("FormatIDR(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
