package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace turns every run of whitespace into a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TrimAffixes removes each suffix and then each prefix once, in the order
// given.
func TrimAffixes(s string, suffixes, prefixes []string) string {
	for _, suffix := range suffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	for _, prefix := range prefixes {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}
