package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"John Doe", "John Doe"},
		{"  John Doe  ", "John Doe"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
		{"lowercase name", "lowercase name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{"plain value", "laptop stand", strptr("laptop stand")},
		{"trimmed", "  SN-1234  ", strptr("SN-1234")},
		{"empty becomes nil", "", nil},
		{"whitespace becomes nil", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Optional(tt.input)
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("Optional(%q) = nil, want %q", tt.input, *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("Optional(%q) = %q, want nil", tt.input, *got)
			case got != nil && tt.want != nil && *got != *tt.want:
				t.Errorf("Optional(%q) = %q, want %q", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestOptionalFrom(t *testing.T) {
	if got := OptionalFrom(nil); got != nil {
		t.Errorf("OptionalFrom(nil) = %q, want nil", *got)
	}
	blank := "   "
	if got := OptionalFrom(&blank); got != nil {
		t.Errorf("OptionalFrom(blank) = %q, want nil", *got)
	}
	v := " desc "
	got := OptionalFrom(&v)
	if got == nil || *got != "desc" {
		t.Errorf("OptionalFrom(%q) = %v, want %q", v, got, "desc")
	}
}

func strptr(s string) *string { return &s }
