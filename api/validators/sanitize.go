package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen runes. Truncation
// counts runes so a multibyte character is never cut in half.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}
