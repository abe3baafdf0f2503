package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceNormalize(t *testing.T) {
	p := NewPriceNormalizer(1, 5000000)

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "₹1,34,567.00", want: "134567.00", ok: true},
		{raw: "$12.5", want: "12.50", ok: true},
		{raw: "₹ 999", want: "999.00", ok: true},
		{raw: "Rs. 499", want: "499.00", ok: true},
		{raw: "Rs.1,299.", want: "1299.00", ok: true},
		{raw: "134,567", want: "134567.00", ok: true},
		{raw: "₹5,000,000", want: "5000000.00", ok: true},
		{raw: "₹1", want: "1.00", ok: true},
		{raw: "free", ok: false},
		{raw: "", ok: false},
		{raw: "₹10,00,00,000", ok: false},
		{raw: "₹0.50", ok: false},
		{raw: "₹0", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := p.Normalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceNormalizeCustomBounds(t *testing.T) {
	p := NewPriceNormalizer(100, 200)

	_, ok := p.Normalize("$99")
	assert.False(t, ok)

	got, ok := p.Normalize("$150")
	assert.True(t, ok)
	assert.Equal(t, "150.00", got)
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{text: "40% off", want: 40, ok: true},
		{text: "Save 12 %", want: 12, ok: true},
		{text: "-27%", want: 27, ok: true},
		{text: "100%", want: 100, ok: true},
		{text: "0% off", ok: false},
		{text: "150%", ok: false},
		{text: "Special offer", ok: false},
		{text: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDiscount(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeDiscount(t *testing.T) {
	got, ok := ComputeDiscount("1000.00", "600.00")
	assert.True(t, ok)
	assert.Equal(t, 40, got)

	got, ok = ComputeDiscount("17999.00", "12999.00")
	assert.True(t, ok)
	assert.Equal(t, 28, got)

	// sale above or equal to original
	_, ok = ComputeDiscount("600.00", "1000.00")
	assert.False(t, ok)
	_, ok = ComputeDiscount("500.00", "500.00")
	assert.False(t, ok)

	// rounds to zero
	_, ok = ComputeDiscount("1000.00", "999.00")
	assert.False(t, ok)

	_, ok = ComputeDiscount("", "600.00")
	assert.False(t, ok)
}
