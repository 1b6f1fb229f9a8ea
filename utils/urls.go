package utils

import (
	"regexp"
)

var (
	// Any Unicode space ends a URL, not only ASCII whitespace
	urlRegex        = regexp.MustCompile(`https?://[^\s\p{Z}\x{85}]+`)
	httpSchemeRegex = regexp.MustCompile(`^https?://`)
)

// ExtractURLs returns every http(s) token in text, in order of appearance.
// No deduplication or validation is done beyond the scheme prefix.
func ExtractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// IsHTTPURL reports whether value starts with an http or https scheme
func IsHTTPURL(value string) bool {
	return httpSchemeRegex.MatchString(value)
}
