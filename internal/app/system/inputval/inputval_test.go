package inputval

import (
	"errors"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},
		{"a@b.co", true},

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid emails - display name format (should be rejected)
		{"User Name <user@example.com>", false},

		// Invalid emails - other malformed
		{"user @example.com", false},
		{"user@ example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	if err := Required("name", "Ana"); err != nil {
		t.Errorf("Required(name, Ana) = %v, want nil", err)
	}
	err := Required("name", "   ")
	if err == nil {
		t.Fatal("expected error for blank value")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "name" {
		t.Errorf("Field = %q, want %q", verr.Field, "name")
	}
}

func TestEmailValidator(t *testing.T) {
	if err := Email("email", "ana@x.com"); err != nil {
		t.Errorf("Email(ana@x.com) = %v, want nil", err)
	}
	if err := Email("email", ""); err == nil {
		t.Error("expected error for empty email")
	}
	if err := Email("email", "not-an-email"); err == nil {
		t.Error("expected error for malformed email")
	}
}

func TestPositive(t *testing.T) {
	if err := Positive("totalSeats", 3); err != nil {
		t.Errorf("Positive(3) = %v, want nil", err)
	}
	if err := Positive("totalSeats", 0); err == nil {
		t.Error("expected error for zero")
	}
	if err := Positive("totalSeats", -1); err == nil {
		t.Error("expected error for negative")
	}
}

func TestNonNegative(t *testing.T) {
	if err := NonNegative("value", 0); err != nil {
		t.Errorf("NonNegative(0) = %v, want nil", err)
	}
	if err := NonNegative("value", -0.01); err == nil {
		t.Error("expected error for negative value")
	}
}
