// ABOUTME: Tests for message cleaning
// ABOUTME: Validates ANSI stripping, prefix removal, and first-line collapse

package sanitize

import (
	"strings"
	"testing"
)

func TestCleanMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "plain",
			input:    "connection refused",
			expected: "connection refused",
		},
		{
			name:     "error_prefix",
			input:    "Error: something broke",
			expected: "something broke",
		},
		{
			name:     "quoted",
			input:    "'wrapped message'",
			expected: "wrapped message",
		},
		{
			name:     "quoted_error_prefix",
			input:    "'Error: nested failure'",
			expected: "nested failure",
		},
		{
			name:     "ansi_color",
			input:    "\x1b[31mred failure\x1b[0m",
			expected: "red failure",
		},
		{
			name:     "ansi_cursor_control",
			input:    "\x1b[2Kcleared line",
			expected: "cleared line",
		},
		{
			name:     "bare_escape",
			input:    "left\x1bover",
			expected: "leftover",
		},
		{
			name:     "stack_trace_collapses",
			input:    "boom\n    at main.run (main.go:10)\n    at main.main (main.go:3)",
			expected: "boom",
		},
		{
			name:     "dropped_characters",
			input:    `he said "no" <here>\`,
			expected: "he said no here",
		},
		{
			name:     "surrounding_whitespace",
			input:    "   padded   ",
			expected: "padded",
		},
		{
			name:     "carriage_return",
			input:    "first\rsecond",
			expected: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CleanMessage(tt.input)
			if got != tt.expected {
				t.Errorf("CleanMessage(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanMessageInvariants(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"plain",
		"multi\nline\nstack",
		"\x1b[31;1mcolored\x1b[0m\nwith trace",
		"\x1b[?25lhidden cursor",
		"\x1b]0;window title\x07terminal retitled",
		"trailing escape\x1b",
		"Error: 'deeply quoted'\r\nrest",
	}

	for _, input := range inputs {
		got := CleanMessage(input)
		if strings.ContainsAny(got, "\r\n") {
			t.Errorf("CleanMessage(%q) = %q contains a newline", input, got)
		}
		if strings.Contains(got, "\x1b") {
			t.Errorf("CleanMessage(%q) = %q contains an escape byte", input, got)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	got := SanitizeString(` "value" <tag> \ `)
	if got != "value tag" {
		t.Errorf("SanitizeString() = %q, want %q", got, "value tag")
	}
}
