// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from free-text fields (descriptions,
// positions, brands) before they are persisted or echoed back to clients.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean removes all HTML from s and trims the result.
func Clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// CleanOptional sanitizes an optional field, collapsing to nil when nothing
// survives sanitization.
func CleanOptional(p *string) *string {
	if p == nil {
		return nil
	}
	cleaned := Clean(*p)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
