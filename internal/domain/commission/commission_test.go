package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRateTierBoundaries(t *testing.T) {
	cases := []struct {
		price string
		want  string
	}{
		{"0", "0.3"},
		{"49.99", "0.3"},
		{"50.00", "0.3"},
		{"50.01", "0.2"},
		{"999.99", "0.2"},
		{"1000.00", "0.2"},
		{"1000.01", "0.15"},
		{"5000", "0.15"},
	}

	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			got := Rate(decimal.RequireFromString(tc.price))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"price %s: want rate %s, got %s", tc.price, tc.want, got)
		})
	}
}

func TestRateDependsOnUnitPriceOnly(t *testing.T) {
	price := decimal.RequireFromString("40")
	// Quantity never shifts the rate tier, only the unit price does.
	for _, qty := range []int{1, 3, 100} {
		assert.Equal(t, int64(qty)*1200, AmountMinor(price, qty))
	}
}

func TestAmountMinor(t *testing.T) {
	cases := []struct {
		name  string
		price string
		qty   int
		want  int64
	}{
		{"low tier", "40", 3, 3600},             // 40*3*0.30 = 36.00
		{"mid tier", "100", 2, 4000},            // 100*2*0.20 = 40.00
		{"high tier", "1200", 1, 18000},         // 1200*0.15 = 180.00
		{"rounds to minor unit", "0.33", 1, 10}, // 0.33*0.30 = 0.099 -> 10 cents
		{"zero price", "0", 5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AmountMinor(decimal.RequireFromString(tc.price), tc.qty)
			assert.Equal(t, tc.want, got)
		})
	}
}
