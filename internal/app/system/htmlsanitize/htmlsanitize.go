// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans user-authored rich text before storage.
// Comment bodies accept a limited HTML subset; everything else is
// stripped server side so clients can render stored bodies directly.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("style").OnElements("table", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	return p
}

// Sanitize returns s with disallowed elements and attributes removed.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// IsPlainText reports whether s contains no HTML tags at all. A lone
// "<" or ">" (as in "5 < 10") does not count as markup.
func IsPlainText(s string) bool {
	open := strings.IndexByte(s, '<')
	if open == -1 {
		return true
	}
	return strings.IndexByte(s[open:], '>') == -1
}
