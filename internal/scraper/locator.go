package scraper

import (
	"github.com/PuerkitoBio/goquery"
)

// acceptFunc is a field's plausibility filter
type acceptFunc func(string) bool

// normalizeFunc prepares a raw candidate before it is filtered
type normalizeFunc func(string) string

// resolve walks rules in declared order and returns the first candidate that
// survives normalization, the rule's own pattern and the field filter. An
// empty result means every rule fell through.
func resolve(doc *goquery.Document, rules []LocatorRule, normalize normalizeFunc, accept acceptFunc) string {
	for i := range rules {
		if value, ok := rules[i].locate(doc, normalize, accept); ok {
			return value
		}
	}
	return ""
}

// locate evaluates a single rule. Missing elements and attributes are not
// errors, they simply produce no candidate.
func (r *LocatorRule) locate(doc *goquery.Document, normalize normalizeFunc, accept acceptFunc) (string, bool) {
	if r.matcher == nil {
		return "", false
	}

	sel := doc.FindMatcher(r.matcher)
	if sel.Length() == 0 {
		return "", false
	}
	if !r.Scan {
		sel = sel.First()
	}

	var found string
	var ok bool
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, candidate := range r.candidates(s) {
			value := normalize(candidate)
			if value == "" {
				continue
			}
			if r.pattern != nil && !r.pattern.MatchString(value) {
				continue
			}
			if accept(value) {
				found, ok = value, true
				return false
			}
		}
		return true
	})

	return found, ok
}

// candidates lists the raw values a rule can read from one element, primary
// source first.
func (r *LocatorRule) candidates(s *goquery.Selection) []string {
	if r.Attr == "" {
		return []string{s.Text()}
	}

	values := make([]string, 0, 1+len(r.FallbackAttrs))
	if v, exists := s.Attr(r.Attr); exists {
		values = append(values, v)
	}
	for _, attr := range r.FallbackAttrs {
		if v, exists := s.Attr(attr); exists {
			values = append(values, v)
		}
	}
	return values
}
