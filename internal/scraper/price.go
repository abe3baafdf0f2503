package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceChars   = regexp.MustCompile(`[^\d.,]`)
	leadingPrice = regexp.MustCompile(`^\d+(\.\d+)?`)
)

// PriceNormalizer turns displayed price text into a canonical decimal string
type PriceNormalizer struct {
	min float64
	max float64
}

// NewPriceNormalizer creates a normalizer accepting values in [min, max]
func NewPriceNormalizer(min, max float64) *PriceNormalizer {
	return &PriceNormalizer{min: min, max: max}
}

// Normalize keeps only digits, dots and commas, drops commas and formats the
// leading number with two fraction digits. Values outside the bounds are
// rejected. Commas are always grouping separators, so "1,34,567" and
// "134,567" both read as 134567.
func (p *PriceNormalizer) Normalize(raw string) (string, bool) {
	value, ok := p.parse(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(value, 'f', 2, 64), true
}

func (p *PriceNormalizer) parse(raw string) (float64, bool) {
	cleaned := priceChars.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	// "Rs. 499" leaves a stray dot in front of the digits
	cleaned = strings.Trim(cleaned, ".")

	number := leadingPrice.FindString(cleaned)
	if number == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if value < p.min || value > p.max {
		return 0, false
	}
	return value, true
}

// ParseDiscount reads the percentage of a discount badge such as "40% off".
// Values outside 1..100 are ignored.
func ParseDiscount(text string) (int, bool) {
	m := discountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil || pct < 1 || pct > 100 {
		return 0, false
	}
	return pct, true
}

// ComputeDiscount derives the rounded discount percentage from two
// normalized prices. It reports false unless original is strictly greater
// than sale and the rounded result is at least 1.
func ComputeDiscount(original, sale string) (int, bool) {
	o, err := strconv.ParseFloat(original, 64)
	if err != nil {
		return 0, false
	}
	s, err := strconv.ParseFloat(sale, 64)
	if err != nil {
		return 0, false
	}
	if o <= 0 || o <= s {
		return 0, false
	}

	pct := int(math.Round(100 * (o - s) / o))
	if pct < 1 {
		return 0, false
	}
	return pct, true
}
