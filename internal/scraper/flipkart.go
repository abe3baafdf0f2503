package scraper

// FlipkartExtractor extracts product fields from flipkart.com pages. Flipkart
// rotates its obfuscated class names often, so everything it needs lives in
// the rule table.
type FlipkartExtractor struct {
	*RuleExtractor
}

// NewFlipkartExtractor creates a Flipkart extractor from its rule table
func NewFlipkartExtractor(rs *RuleSet, thresholds Thresholds) *FlipkartExtractor {
	return &FlipkartExtractor{RuleExtractor: NewRuleExtractor(rs, thresholds)}
}
