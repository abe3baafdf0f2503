package helpers

import (
	"strings"
)

// CollapseSpaces trims s and replaces every run of whitespace, newlines
// included, with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContainsAnyFold reports whether s contains any of the terms, ignoring case
func ContainsAnyFold(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
