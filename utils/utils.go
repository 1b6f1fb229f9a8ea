package utils

import (
	"strings"
	"unicode/utf8"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// SplitMessage breaks content into chunks of at most maxLen characters, preferring line boundaries.
// A single line longer than maxLen is hard-split on rune boundaries.
func SplitMessage(content string, maxLen int) []string {
	AssertInvariant(maxLen > 0, "maxLen must be positive")

	if utf8.RuneCountInString(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		for len(runes) > maxLen {
			flush()
			chunks = append(chunks, string(runes[:maxLen]))
			runes = runes[maxLen:]
		}

		extra := len(runes)
		if currentLen > 0 {
			extra++ // newline separator
		}
		if currentLen+extra > maxLen {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(string(runes))
		currentLen += len(runes)
	}
	flush()

	return chunks
}
