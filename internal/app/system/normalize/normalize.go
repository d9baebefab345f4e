// internal/app/system/normalize/normalize.go

// Package normalize standardizes user-supplied values before validation and
// persistence. Every optional free-text field goes through Optional so that
// "absent" is always nil, never an empty string.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Optional trims s and returns nil when nothing remains. This is the single
// absent-value representation for optional strings in the domain model.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// OptionalFrom collapses an already-pointer value the same way Optional does.
func OptionalFrom(p *string) *string {
	if p == nil {
		return nil
	}
	return Optional(*p)
}
