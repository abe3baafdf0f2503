package scraper

import (
	"fmt"
)

// extractorConstructors maps platforms with dedicated extractors. Rule sets
// for any other platform get a plain RuleExtractor.
var extractorConstructors = map[Platform]func(*RuleSet, Thresholds) PlatformExtractor{
	PlatformAmazon: func(rs *RuleSet, t Thresholds) PlatformExtractor {
		return NewAmazonExtractor(rs, t)
	},
	PlatformFlipkart: func(rs *RuleSet, t Thresholds) PlatformExtractor {
		return NewFlipkartExtractor(rs, t)
	},
}

// CreateExtractors builds one extractor per rule set, keeping rule set order
// as the platform detection order.
func CreateExtractors(sets []*RuleSet, thresholds Thresholds) ([]PlatformExtractor, error) {
	seen := make(map[Platform]bool, len(sets))
	extractors := make([]PlatformExtractor, 0, len(sets))

	for _, rs := range sets {
		if seen[rs.Platform] {
			return nil, fmt.Errorf("duplicate rule set for platform %s", rs.Platform)
		}
		seen[rs.Platform] = true

		if constructor, ok := extractorConstructors[rs.Platform]; ok {
			extractors = append(extractors, constructor(rs, thresholds))
		} else {
			extractors = append(extractors, NewRuleExtractor(rs, thresholds))
		}
	}

	return extractors, nil
}
