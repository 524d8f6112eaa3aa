package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at maxLen
// runes. Member and location names arrive as free text, so the cut has to
// land on a rune boundary.
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
