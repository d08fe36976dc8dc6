package util

import "strings"

// SanitizePostgresText strips NUL bytes and invalid UTF-8, which postgres
// text columns reject. Raw corpus documents go through this before storage.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
