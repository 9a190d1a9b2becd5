package utils

import (
	"strings"
	"unicode"
)

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail is a shape check only: one @, a non-empty local part and a
// dotted domain.
func IsValidEmail(email string) bool {
	normalized := NormalizeEmail(email)
	if normalized == "" || strings.ContainsFunc(normalized, unicode.IsSpace) {
		return false
	}
	local, domain, ok := strings.Cut(normalized, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
