package utils

import (
	"regexp"
	"strings"
)

// Truncate returns a truncated string with "..." if it exceeds maxLen.
// This function is Unicode-safe, counting runes instead of bytes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// NormalizeConcept canonicalizes a concept label for dedup comparisons:
// trimmed and lower-cased. Display labels keep their original casing.
func NormalizeConcept(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var leadingNumberRegex = regexp.MustCompile(`^\d+[.)]\s*`)

// StripListNumbering removes a leading "1. " or "2) " style list marker that
// models sometimes prepend despite instructions.
func StripListNumbering(s string) string {
	return leadingNumberRegex.ReplaceAllString(strings.TrimSpace(s), "")
}
