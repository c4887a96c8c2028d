package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// Property is a canonical registry entry owned by an organization.
// Statements and match results reference properties, they never own them.
type Property struct {
	ID      string
	OrgID   string
	Name    string
	Address string
}

// Vendors tag renamed buildings with a trailing "(OLD)" or "(NEW)" marker.
var trailingTag = regexp.MustCompile(`(?i)\s*\((?:old|new)\)\s*$`)

// NormalizeName turns a raw property label into a canonical comparison key:
// the trailing (OLD)/(NEW) tag is stripped, all whitespace removed and the
// result lower-cased. "123 Main St (OLD)" and "123   main st" compare equal.
// Used only for exact-match detection, never for display.
func NormalizeName(name string) string {
	s := trailingTag.ReplaceAllString(name, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	return strings.ToLower(s)
}
