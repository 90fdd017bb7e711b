// Package slug validates and normalizes the short identifiers the engine
// accepts from callers: currency and security symbols, and preference keys.
package slug

import (
	"regexp"
	"strings"
)

var (
	reSymbol = regexp.MustCompile(`^[A-Z0-9._^]{1,12}$`)
	reKey    = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)
)

// IsSymbol reports whether s is an acceptable currency or security symbol,
// e.g. "USD", "GOOG", "BRK.B".
func IsSymbol(s string) bool {
	return reSymbol.MatchString(s)
}

// NormalizeSymbol uppercases and trims s. It does not validate.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsKey reports whether s is an acceptable preference or attribute key.
func IsKey(s string) bool {
	return reKey.MatchString(s)
}
