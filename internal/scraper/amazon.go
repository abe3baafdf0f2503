package scraper

import (
	"encoding/json"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// dynamicImageSelectors match the main product image, which carries a JSON
// map of every resolution Amazon serves for it. Tried in order.
var dynamicImageSelectors = []string{"#landingImage", "#imgBlkFront", ".a-dynamic-image"}

// AmazonExtractor extracts product fields from amazon.in / amazon.com pages
type AmazonExtractor struct {
	*RuleExtractor
}

// NewAmazonExtractor creates an Amazon extractor from its rule table
func NewAmazonExtractor(rs *RuleSet, thresholds Thresholds) *AmazonExtractor {
	return &AmazonExtractor{RuleExtractor: NewRuleExtractor(rs, thresholds)}
}

// ExtractFields resolves the rule tables and, when no image rule matched,
// falls back to the data-a-dynamic-image map.
func (e *AmazonExtractor) ExtractFields(doc *goquery.Document) RawFields {
	fields := e.RuleExtractor.ExtractFields(doc)
	if fields.ImageURL == "" {
		fields.ImageURL = e.dynamicImage(doc)
	}
	return fields
}

// dynamicImage picks the largest acceptable URL from data-a-dynamic-image,
// e.g. {"https://m.media-amazon.com/images/I/61x._SL1500_.jpg":[1500,1500]}.
func (e *AmazonExtractor) dynamicImage(doc *goquery.Document) string {
	for _, selector := range dynamicImageSelectors {
		raw, exists := doc.Find(selector).First().Attr("data-a-dynamic-image")
		if !exists || raw == "" {
			continue
		}
		if url := e.largestImage(raw); url != "" {
			return url
		}
	}
	return ""
}

func (e *AmazonExtractor) largestImage(raw string) string {
	var sizes map[string][]int
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return ""
	}

	type candidate struct {
		url  string
		area int
	}
	candidates := make([]candidate, 0, len(sizes))
	for url, dims := range sizes {
		area := 0
		if len(dims) == 2 {
			area = dims[0] * dims[1]
		}
		candidates = append(candidates, candidate{url: normalizeImageURL(url), area: area})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].area != candidates[j].area {
			return candidates[i].area > candidates[j].area
		}
		return candidates[i].url < candidates[j].url
	})

	for _, c := range candidates {
		if e.acceptImage(c.url) {
			return c.url
		}
	}
	return ""
}
