package utils

import (
	"strings"
)

// Slugify derives a URL-safe slug from a topic name: trim, lowercase,
// collapse whitespace runs to a single hyphen. Deterministic and
// idempotent, so slugs can be re-derived without drifting.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-'
	})
	return strings.Join(fields, "-")
}
