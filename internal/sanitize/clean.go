// ABOUTME: Message cleaning for raw error text
// ABOUTME: Strips ANSI escapes, quoting noise, and everything after the first line

package sanitize

import (
	"regexp"
	"strings"
)

var (
	// CSI color codes ("ESC[...m") and generic control sequences
	// ("ESC[...<letter>").
	ansiColorPattern   = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	ansiControlPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

	// Characters dropped by basic string sanitization.
	droppedChars = strings.NewReplacer(`"`, "", `\`, "", "<", "", ">", "")
)

// SanitizeString applies basic string sanitization: drops double quotes,
// backslashes, and angle brackets, then trims surrounding whitespace.
func SanitizeString(s string) string {
	return strings.TrimSpace(droppedChars.Replace(s))
}

// CleanMessage normalizes a raw error message into a single safe line.
//
// Stack traces collapse to their header line: everything after the first
// newline is discarded.
func CleanMessage(raw string) string {
	if raw == "" {
		return ""
	}

	s := SanitizeString(raw)
	s = ansiColorPattern.ReplaceAllString(s, "")
	s = ansiControlPattern.ReplaceAllString(s, "")
	// Bare escapes and non-CSI sequences (OSC titles etc.) leave their
	// ESC byte behind; drop it outright.
	s = strings.ReplaceAll(s, "\x1b", "")

	// First line only.
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}

	s = strings.Trim(s, "'")
	s = strings.TrimPrefix(s, "Error: ")
	s = strings.Trim(s, "' ")

	return strings.TrimSpace(s)
}
