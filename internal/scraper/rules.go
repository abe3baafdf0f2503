package scraper

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

//go:embed rules/*.yaml
var embeddedRules embed.FS

// ruleFiles lists the platform rule tables in detection order
var ruleFiles = []string{"amazon.yaml", "flipkart.yaml"}

// FieldKind names a product field resolved through locator rules
type FieldKind string

const (
	FieldTitle         FieldKind = "title"
	FieldDescription   FieldKind = "description"
	FieldImage         FieldKind = "image"
	FieldSalePrice     FieldKind = "sale_price"
	FieldOriginalPrice FieldKind = "original_price"
	FieldDiscount      FieldKind = "discount"
	FieldCategory      FieldKind = "category"
)

var knownFields = map[FieldKind]bool{
	FieldTitle:         true,
	FieldDescription:   true,
	FieldImage:         true,
	FieldSalePrice:     true,
	FieldOriginalPrice: true,
	FieldDiscount:      true,
	FieldCategory:      true,
}

// LocatorRule is one attempt at reading a field: a CSS selector plus an
// optional attribute. Without Attr the element text is used.
type LocatorRule struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
	// FallbackAttrs are tried on the same element when Attr yields nothing
	// usable. Only image rules may set them.
	FallbackAttrs []string `yaml:"fallback_attrs,omitempty"`
	// Scan evaluates every matching element instead of only the first
	Scan bool `yaml:"scan,omitempty"`
	// Pattern is a regular expression the value must match
	Pattern string `yaml:"pattern,omitempty"`

	matcher cascadia.Selector
	pattern *regexp.Regexp
}

// RuleSet is the complete rule table of one platform
type RuleSet struct {
	Platform           Platform                    `yaml:"platform"`
	Hosts              []string                    `yaml:"hosts"`
	BrandTerms         []string                    `yaml:"brand_terms"`
	ImageRejectMarkers []string                    `yaml:"image_reject_markers"`
	Fields             map[FieldKind][]LocatorRule `yaml:"fields"`
}

// Rules returns the ordered rules of a field
func (rs *RuleSet) Rules(field FieldKind) []LocatorRule {
	return rs.Fields[field]
}

// ParseRuleSet decodes and compiles a YAML rule table
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) compile() error {
	if rs.Platform == "" {
		return errors.New("rule set: platform is required")
	}
	if len(rs.Hosts) == 0 {
		return fmt.Errorf("rule set %s: at least one host is required", rs.Platform)
	}

	for field, rules := range rs.Fields {
		if !knownFields[field] {
			return fmt.Errorf("rule set %s: unknown field %q", rs.Platform, field)
		}
		for i := range rules {
			rule := &rules[i]
			matcher, err := cascadia.Compile(rule.Selector)
			if err != nil {
				return fmt.Errorf("rule set %s: %s rule %d: invalid selector %q: %w",
					rs.Platform, field, i, rule.Selector, err)
			}
			rule.matcher = matcher

			// a selector group matches in document order, which would
			// override the declared rule order
			if _, err := cascadia.Parse(rule.Selector); err != nil {
				return fmt.Errorf("rule set %s: %s rule %d: %q must be a single selector, list alternatives as separate rules",
					rs.Platform, field, i, rule.Selector)
			}

			if len(rule.FallbackAttrs) > 0 && field != FieldImage {
				return fmt.Errorf("rule set %s: %s rule %d: fallback_attrs are only allowed on image rules",
					rs.Platform, field, i)
			}
			if len(rule.FallbackAttrs) > 0 && rule.Attr == "" {
				return fmt.Errorf("rule set %s: %s rule %d: fallback_attrs require attr", rs.Platform, field, i)
			}

			if rule.Pattern != "" {
				pattern, err := regexp.Compile(rule.Pattern)
				if err != nil {
					return fmt.Errorf("rule set %s: %s rule %d: invalid pattern: %w", rs.Platform, field, i, err)
				}
				rule.pattern = pattern
			}
		}
	}
	return nil
}

// LoadRuleSets reads the platform rule tables. Files present in dir replace
// the embedded defaults of the same name; an empty dir uses only the
// embedded tables.
func LoadRuleSets(dir string) ([]*RuleSet, error) {
	sets := make([]*RuleSet, 0, len(ruleFiles))
	for _, name := range ruleFiles {
		data, err := readRuleFile(dir, name)
		if err != nil {
			return nil, err
		}
		rs, err := ParseRuleSet(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

func readRuleFile(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read rule file %s: %w", name, err)
		}
	}

	data, err := embeddedRules.ReadFile("rules/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded rule file %s: %w", name, err)
	}
	return data, nil
}
