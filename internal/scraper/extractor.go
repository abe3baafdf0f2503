package scraper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sjsage522/productscraper/helpers"

	"github.com/PuerkitoBio/goquery"
)

var (
	// priceMarker accepts text carrying at least a digit or a currency sign
	priceMarker = regexp.MustCompile(`[0-9₹$]|Rs`)
	// discountPattern captures the number of an "NN% off" badge
	discountPattern = regexp.MustCompile(`(\d+)\s*%`)
)

// RuleExtractor resolves every product field through a platform rule table.
// Platform extractors embed it and add retailer specific fallbacks.
type RuleExtractor struct {
	rules      *RuleSet
	thresholds Thresholds
}

// NewRuleExtractor creates an extractor driven purely by rs
func NewRuleExtractor(rs *RuleSet, thresholds Thresholds) *RuleExtractor {
	return &RuleExtractor{rules: rs, thresholds: thresholds}
}

// Platform returns the platform of the rule table
func (e *RuleExtractor) Platform() Platform {
	return e.rules.Platform
}

// Hosts returns the URL substrings of the rule table
func (e *RuleExtractor) Hosts() []string {
	return e.rules.Hosts
}

// ExtractFields resolves all fields and applies the title and description
// sentinels.
func (e *RuleExtractor) ExtractFields(doc *goquery.Document) RawFields {
	fields := RawFields{
		Title:       e.resolveText(doc, FieldTitle, e.acceptTitle),
		Description: e.resolveText(doc, FieldDescription, e.acceptDescription),
		ImageURL:    resolve(doc, e.rules.Rules(FieldImage), normalizeImageURL, e.acceptImage),
	}

	fields.SalePriceText = e.resolveText(doc, FieldSalePrice, acceptPrice)
	fields.OriginalPriceText = e.resolveText(doc, FieldOriginalPrice, func(v string) bool {
		return acceptPrice(v) && v != fields.SalePriceText
	})
	fields.DiscountText = e.resolveText(doc, FieldDiscount, discountPattern.MatchString)
	fields.CategoryText = e.resolveText(doc, FieldCategory, func(v string) bool { return v != "" })

	if fields.Title == "" {
		fields.Title = TitleNotFound
	}
	if fields.Description == "" {
		fields.Description = DescriptionUnavailable
	}
	return fields
}

func (e *RuleExtractor) resolveText(doc *goquery.Document, field FieldKind, accept acceptFunc) string {
	return resolve(doc, e.rules.Rules(field), helpers.CollapseSpaces, accept)
}

// acceptTitle rejects short strings and navigation text carrying the
// retailer's own name.
func (e *RuleExtractor) acceptTitle(v string) bool {
	return utf8.RuneCountInString(v) > e.thresholds.MinTitleLength &&
		!helpers.ContainsAnyFold(v, e.rules.BrandTerms)
}

func (e *RuleExtractor) acceptDescription(v string) bool {
	return utf8.RuneCountInString(v) > e.thresholds.MinDescriptionLength
}

func (e *RuleExtractor) acceptImage(v string) bool {
	lower := strings.ToLower(v)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return !helpers.ContainsAnyFold(v, e.rules.ImageRejectMarkers)
}

func acceptPrice(v string) bool {
	return priceMarker.MatchString(v)
}

// normalizeImageURL removes all whitespace and upgrades protocol-relative URLs
func normalizeImageURL(v string) string {
	v = strings.Join(strings.Fields(v), "")
	if strings.HasPrefix(v, "//") {
		return "https:" + v
	}
	return v
}
