package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey returns the canonical form of a uniqueness key: surrounding
// whitespace removed, NFC composed and case folded. Every comparison and every
// stored copy of a username, email or participant key goes through here.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

// SameKey reports whether a and b normalize to the same key.
func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}
