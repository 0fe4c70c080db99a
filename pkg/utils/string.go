package utils

import "unicode/utf8"

// Truncate is a simple string truncate
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return Clip(s, maxLen) + "..."
}

// Clip returns the longest prefix of s within max bytes that does not end
// mid-rune, so clipped strings stay valid UTF-8 and survive JSON encoding
// unchanged.
func Clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
