// ABOUTME: Recursive data sanitization over arbitrary value trees
// ABOUTME: Masks sensitive keys, truncates strings/URLs, and guards against cycles

package sanitize

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	ellipsis = "..."

	// ComplexObjectMarker replaces values whose sanitization failed or
	// whose nesting exceeds the recursion bound.
	ComplexObjectMarker = "[Complex Object]"

	// CircularReferenceMarker replaces known back-reference keys during
	// the strict logging pass.
	CircularReferenceMarker = "[Circular Reference]"

	// maxDepth bounds recursion over the input graph. Inputs are decoded
	// JSON trees in practice, so anything deeper is pathological.
	maxDepth = 32
)

// Sanitize redacts a value tree with the current default policy.
func (s *Sanitizer) Sanitize(v any) any {
	return SanitizeWith(v, s.Policy())
}

// ForLogging applies the stricter pre-logging pass with the current
// default policy: stack fields dropped, string values cleaned, and
// parent/cause back-references replaced with a circular marker.
func (s *Sanitizer) ForLogging(v any) any {
	return ForLoggingWith(v, s.Policy())
}

// SanitizeWith redacts a value tree with an explicit one-off policy.
func SanitizeWith(v any, p Policy) any {
	return sanitizeValue(v, p, 0)
}

func sanitizeValue(v any, p Policy, depth int) any {
	if v == nil {
		return nil
	}
	if depth > maxDepth {
		return ComplexObjectMarker
	}

	switch val := v.(type) {
	case string:
		return truncateLength(val, p.MaxStringLength)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item, p, depth+1)
		}
		return out
	case map[string]any:
		return sanitizeMap(val, p, depth+1)
	default:
		return v
	}
}

func sanitizeMap(m map[string]any, p Policy, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if p.isSkippedKey(key) {
			continue
		}
		if p.isSensitiveKey(key) {
			// Masking wins over recursion.
			out[key] = p.MaskValue
			continue
		}

		switch val := value.(type) {
		case string:
			s := val
			if p.TruncateURLs {
				s = truncateURL(s)
			}
			out[key] = truncateLength(s, p.MaxStringLength)
		case map[string]any, []any:
			// Objects nested under arrays still carry sensitive keys.
			out[key] = sanitizeValue(val, p, depth)
		default:
			out[key] = value
		}
	}
	return out
}

// ForLoggingWith applies the strict pre-logging pass with an explicit
// policy. Failures while sanitizing a nested value degrade to
// ComplexObjectMarker instead of propagating.
func ForLoggingWith(v any, p Policy) any {
	switch val := v.(type) {
	case map[string]any:
		return forLoggingMap(val, p, 0)
	case []any:
		return forLoggingSlice(val, p, 0)
	default:
		return sanitizeValue(v, p, 0)
	}
}

func forLoggingMap(m map[string]any, p Policy, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "stack") {
			continue
		}
		if p.isSkippedKey(key) {
			continue
		}
		if p.isSensitiveKey(key) {
			out[key] = p.MaskValue
			continue
		}

		switch val := value.(type) {
		case string:
			s := CleanMessage(val)
			if p.TruncateURLs {
				s = truncateURL(s)
			}
			out[key] = truncateLength(s, p.MaxStringLength)
		case map[string]any:
			if lower == "parent" || lower == "cause" {
				out[key] = CircularReferenceMarker
				continue
			}
			out[key] = safeNested(val, p, depth+1)
		case []any:
			out[key] = forLoggingSlice(val, p, depth+1)
		default:
			out[key] = value
		}
	}
	return out
}

// forLoggingSlice walks array elements with the same strictness as
// forLoggingMap: nested objects recurse, strings are cleaned, the rest
// passes through.
func forLoggingSlice(items []any, p Policy, depth int) any {
	if depth > maxDepth {
		return ComplexObjectMarker
	}
	out := make([]any, len(items))
	for i, item := range items {
		switch el := item.(type) {
		case map[string]any:
			out[i] = safeNested(el, p, depth+1)
		case []any:
			out[i] = forLoggingSlice(el, p, depth+1)
		case string:
			s := CleanMessage(el)
			if p.TruncateURLs {
				s = truncateURL(s)
			}
			out[i] = truncateLength(s, p.MaxStringLength)
		default:
			out[i] = item
		}
	}
	return out
}

// safeNested recurses into a nested object, substituting the complex
// marker for depth overruns and panics raised mid-recursion.
func safeNested(m map[string]any, p Policy, depth int) (result any) {
	if depth > maxDepth {
		return ComplexObjectMarker
	}
	defer func() {
		if r := recover(); r != nil {
			result = ComplexObjectMarker
		}
	}()
	return forLoggingMap(m, p, depth)
}

// SanitizeByPaths masks the leaf at each dot-separated path in a deep
// copy of the input. Paths that do not fully resolve are skipped.
// An empty mask falls back to DefaultMask.
func SanitizeByPaths(v any, paths []string, mask string) any {
	if mask == "" {
		mask = DefaultMask
	}

	copied := deepCopy(v)
	root, ok := copied.(map[string]any)
	if !ok {
		return copied
	}

	for _, path := range paths {
		maskPath(root, strings.Split(path, "."), mask)
	}
	return root
}

func maskPath(m map[string]any, segments []string, mask string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		if _, exists := m[segments[0]]; exists {
			m[segments[0]] = mask
		}
		return
	}
	next, ok := m[segments[0]].(map[string]any)
	if !ok {
		// Missing or non-object intermediate segment: silently skip.
		return
	}
	maskPath(next, segments[1:], mask)
}

// deepCopy copies a decoded JSON tree. Values that are not plain
// maps/slices/primitives are round-tripped through JSON; anything that
// cannot be marshalled is replaced with the complex marker.
func deepCopy(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int, int64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ComplexObjectMarker
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return ComplexObjectMarker
		}
		return decoded
	}
}

// truncateLength bounds s to at most max bytes of content plus an
// ellipsis, cutting on a rune boundary so the output stays valid UTF-8.
// Strings already carrying the ellipsis from a previous pass are left
// alone so sanitization stays idempotent.
func truncateLength(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if strings.HasSuffix(s, ellipsis) && len(s) <= max+len(ellipsis) {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// truncateURL cuts everything from the first "http" occurrence onward.
// Content-aware truncation: embedded URLs may carry tokens in query
// strings, so the whole tail goes.
func truncateURL(s string) string {
	idx := strings.Index(strings.ToLower(s), "http")
	if idx < 0 {
		return s
	}
	return s[:idx] + ellipsis
}
