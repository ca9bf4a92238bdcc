package utils

import (
	"strings"
	"unicode"
)

// TruncateForLog returns a one-line preview of s for log fields: control
// characters become spaces and the result is cut to limit runes with an
// ellipsis.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
