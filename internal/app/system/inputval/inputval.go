// internal/app/system/inputval/inputval.go

// Package inputval validates user-supplied input before it reaches a store.
// A failed check produces a *ValidationError so callers can distinguish local
// rejection from remote errors.
package inputval

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError reports a locally rejected input. No store write happens
// when one of these is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Required returns a ValidationError when value is empty after trimming.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// Email validates a required, well-formed email address.
func Email(field, value string) error {
	if err := Required(field, value); err != nil {
		return err
	}
	if !IsValidEmail(value) {
		return &ValidationError{Field: field, Reason: "is not a valid email address"}
	}
	return nil
}

// Positive requires n > 0 (seat counts and the like).
func Positive(field string, n int) error {
	if n <= 0 {
		return &ValidationError{Field: field, Reason: "must be a positive number"}
	}
	return nil
}

// NonNegative requires n >= 0 (monetary values).
func NonNegative(field string, n float64) error {
	if n < 0 {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// IsValidEmail reports whether addr parses as a bare RFC 5322 address.
// Display-name forms ("Name <a@b>") are rejected.
func IsValidEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr
}
