package scraper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := LoadClassifier("")
	require.NoError(t, err)
	return c
}

func TestClassifyTitle(t *testing.T) {
	c := loadTestClassifier(t)

	tests := []struct {
		title string
		want  string
	}{
		{title: "wireless bluetooth headphones", want: "Audio & Headphones"},
		{title: "Apple iPhone 15 (128 GB) - Black", want: "Mobile & Electronics"},
		{title: "Logitech M331 Silent Wireless Mouse", want: "Computers & Laptops"},
		{title: "Puma Running Shoes for Men", want: "Footwear"},
		{title: "Stainless Steel Kitchen Knife Set", want: "Home & Kitchen"},
		{title: "Something else entirely", want: GeneralCategory},
		{title: "", want: GeneralCategory},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.title, ""))
		})
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := loadTestClassifier(t)

	lower := c.Classify("wireless bluetooth headphones", "")
	upper := c.Classify(strings.ToUpper("wireless bluetooth headphones"), "")
	mixed := c.Classify("Wireless Bluetooth HeadPhones", "")

	assert.Equal(t, "Audio & Headphones", lower)
	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, mixed)
	// deterministic across calls
	assert.Equal(t, lower, c.Classify("wireless bluetooth headphones", ""))
}

func TestClassifyPrefersBreadcrumb(t *testing.T) {
	c := loadTestClassifier(t)

	assert.Equal(t, "Sports & Fitness", c.Classify("Puma Running Shoes for Men", "Sports"))
	// a breadcrumb matching nothing falls through to the title
	assert.Equal(t, "Footwear", c.Classify("Puma Running Shoes for Men", "Clearance"))
	// entries are checked in table order, so Computers wins over Automotive
	assert.Equal(t, "Computers & Laptops", c.Classify("", "Computers & Accessories"))
}

func TestClassifyMatchesWholeWords(t *testing.T) {
	c := loadTestClassifier(t)

	// "phone" must not match inside "headphones", nor "mi" inside "microwave"
	assert.Equal(t, "Audio & Headphones", c.Classify("Noise cancelling headphones", ""))
	assert.Equal(t, "Home & Kitchen", c.Classify("Solo microwave oven for kitchen", ""))
}

func TestNewClassifierFallback(t *testing.T) {
	c, err := NewClassifier([]CategoryRule{{Label: "Gadgets", Keywords: []string{"gadget"}}}, "")
	require.NoError(t, err)

	assert.Equal(t, "Gadgets", c.Classify("Useful gadgets", ""))
	assert.Equal(t, GeneralCategory, c.Classify("Garden hose", ""))

	_, err = NewClassifier([]CategoryRule{{Keywords: []string{"x"}}}, "")
	assert.Error(t, err)
}

func TestLoadClassifierOverride(t *testing.T) {
	dir := t.TempDir()
	table := `
fallback: Misc
categories:
  - label: Plants
    keywords: [plant, seed]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.yaml"), []byte(table), 0o644))

	c, err := LoadClassifier(dir)
	require.NoError(t, err)
	assert.Equal(t, "Plants", c.Classify("Tomato seeds pack", ""))
	assert.Equal(t, "Misc", c.Classify("Laptop stand", ""))
}
