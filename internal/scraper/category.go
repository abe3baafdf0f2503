package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const categoriesFile = "categories.yaml"

// CategoryRule maps a set of keywords to a taxonomy label
type CategoryRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`

	patterns []*regexp.Regexp
}

type categoryTable struct {
	Fallback   string         `yaml:"fallback"`
	Categories []CategoryRule `yaml:"categories"`
}

// Classifier assigns a category label from breadcrumb and title text
type Classifier struct {
	rules    []CategoryRule
	fallback string
}

// NewClassifier compiles rules in order. An empty fallback means General.
func NewClassifier(rules []CategoryRule, fallback string) (*Classifier, error) {
	if fallback == "" {
		fallback = GeneralCategory
	}

	compiled := make([]CategoryRule, len(rules))
	for i, rule := range rules {
		if rule.Label == "" {
			return nil, fmt.Errorf("category %d: label is required", i)
		}
		rule.patterns = make([]*regexp.Regexp, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			// whole word, optionally pluralized: "headphones" matches
			// "headphone" but not "phone"
			pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `(?:s|es)?\b`)
			if err != nil {
				return nil, fmt.Errorf("category %s: keyword %q: %w", rule.Label, kw, err)
			}
			rule.patterns = append(rule.patterns, pattern)
		}
		compiled[i] = rule
	}

	return &Classifier{rules: compiled, fallback: fallback}, nil
}

// LoadClassifier reads categories.yaml from dir, falling back to the
// embedded taxonomy.
func LoadClassifier(dir string) (*Classifier, error) {
	data, err := readRuleFile(dir, categoriesFile)
	if err != nil {
		return nil, err
	}

	var table categoryTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", categoriesFile, err)
	}
	return NewClassifier(table.Categories, table.Fallback)
}

// Classify checks the breadcrumb against every entry before looking at the
// title. The first matching entry wins.
func (c *Classifier) Classify(title, breadcrumb string) string {
	if breadcrumb != "" {
		if label, ok := c.match(breadcrumb); ok {
			return label
		}
	}
	if label, ok := c.match(title); ok {
		return label
	}
	return c.fallback
}

func (c *Classifier) match(text string) (string, bool) {
	for _, rule := range c.rules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(text) {
				return rule.Label, true
			}
		}
	}
	return "", false
}
