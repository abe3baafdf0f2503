package scraper

import (
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Platform identifies a supported retailer
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
)

// Sentinel values used when no locator rule yields a usable value
const (
	TitleNotFound          = "Title Not Found"
	DescriptionUnavailable = "Description not available"
	GeneralCategory        = "General"
)

// ScrapedProduct is the normalized record produced for one product page
type ScrapedProduct struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"imageUrl"`
	OriginalPrice *string  `json:"originalPrice,omitempty"`
	SalePrice     *string  `json:"salePrice,omitempty"`
	Discount      *int     `json:"discount,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Platform      Platform `json:"platform"`
	ProductURL    string   `json:"productUrl"`
}

// RawFields holds the unnormalized strings an extractor located. Empty
// strings mean no rule matched, except for Title and Description which carry
// their sentinel values instead.
type RawFields struct {
	Title             string
	Description       string
	ImageURL          string
	SalePriceText     string
	OriginalPriceText string
	DiscountText      string
	CategoryText      string
}

// PlatformExtractor locates product fields in a parsed page of one retailer
type PlatformExtractor interface {
	// Platform returns the retailer this extractor understands
	Platform() Platform

	// Hosts returns the URL substrings that identify the retailer
	Hosts() []string

	// ExtractFields resolves every field through the retailer's rule tables.
	// It never fails: fields that cannot be located fall back to sentinels.
	ExtractFields(doc *goquery.Document) RawFields
}

// Fetcher retrieves the raw HTML of a page as UTF-8
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}

// Thresholds are the tunable plausibility bounds used during extraction
type Thresholds struct {
	MinPrice             float64
	MaxPrice             float64
	MinTitleLength       int
	MinDescriptionLength int
}

// DefaultThresholds returns the bounds the rule tables were tuned against
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPrice:             1,
		MaxPrice:             5000000,
		MinTitleLength:       10,
		MinDescriptionLength: 20,
	}
}
