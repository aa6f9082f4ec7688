package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates to maxLen bytes.
// Client names arrive from spreadsheets and carry trailing spaces often enough
// to matter.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
