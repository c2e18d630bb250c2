// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied identifier fields before
// they are stored or compared. Stores call these at their write paths so
// lookups never depend on the caller's casing or stray whitespace.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role canonicalizes a role token to the stored uppercase form.
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Slug canonicalizes an organization slug: trimmed, lowercased, spaces
// and underscores collapsed to single hyphens. It does not validate;
// validators own the allowed-character check.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-'
	})
	return strings.Join(fields, "-")
}

// Fold returns the case/diacritic-folded form for the *_ci shadow fields
// the stores index for search.
func Fold(s string) string {
	return text.Fold(s)
}
