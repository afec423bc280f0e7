// ABOUTME: Sanitization policy with process-wide mutable defaults
// ABOUTME: Sensitive keys, mask value, skip properties, and truncation settings

package sanitize

import (
	"strings"
	"sync"
)

// DefaultMask replaces the value of any sensitive field.
const DefaultMask = "********"

// Policy controls how the sanitizer treats a value tree.
type Policy struct {
	// SensitiveKeys are field names carrying secret material. A key
	// matches when its lowercased name equals or contains one of these.
	SensitiveKeys []string

	// MaskValue replaces matched sensitive values.
	MaskValue string

	// SkipProperties are removed outright. Substring match on the
	// lowercased key name.
	SkipProperties []string

	// TruncateURLs rewrites string values by cutting everything from the
	// first "http" occurrence onward.
	TruncateURLs bool

	// MaxStringLength truncates longer string values with a trailing
	// ellipsis. Zero disables length truncation.
	MaxStringLength int
}

// DefaultPolicy returns the stock policy: common credential key names,
// the standard mask, URL truncation on, no length limit.
func DefaultPolicy() Policy {
	return Policy{
		SensitiveKeys: []string{
			"password", "passwd", "pwd",
			"token", "secret", "apikey", "api_key", "api-key",
			"authorization", "auth", "credential", "cookie",
			"private_key", "privatekey", "session",
		},
		MaskValue:    DefaultMask,
		TruncateURLs: true,
	}
}

// Overrides is a partial policy merged into the current defaults.
// Nil fields leave the existing value untouched.
type Overrides struct {
	SensitiveKeys   []string
	MaskValue       *string
	SkipProperties  []string
	TruncateURLs    *bool
	MaxStringLength *int
}

// merge applies o onto p, last writer wins.
func (p Policy) merge(o Overrides) Policy {
	if o.SensitiveKeys != nil {
		p.SensitiveKeys = o.SensitiveKeys
	}
	if o.MaskValue != nil {
		p.MaskValue = *o.MaskValue
	}
	if o.SkipProperties != nil {
		p.SkipProperties = o.SkipProperties
	}
	if o.TruncateURLs != nil {
		p.TruncateURLs = *o.TruncateURLs
	}
	if o.MaxStringLength != nil {
		p.MaxStringLength = *o.MaxStringLength
	}
	return p
}

// isSensitiveKey reports whether key matches the policy's sensitive set.
func (p Policy) isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range p.SensitiveKeys {
		if lower == s || strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// isSkippedKey reports whether key matches the policy's skip set.
func (p Policy) isSkippedKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range p.SkipProperties {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Sanitizer owns the process-wide default policy. The policy is mutable
// via Update; reads take a copy under the lock so concurrent sanitization
// never observes a half-merged policy.
type Sanitizer struct {
	mu     sync.RWMutex
	policy Policy
}

// New creates a sanitizer with the given policy.
func New(p Policy) *Sanitizer {
	if p.MaskValue == "" {
		p.MaskValue = DefaultMask
	}
	return &Sanitizer{policy: p}
}

// NewDefault creates a sanitizer with DefaultPolicy.
func NewDefault() *Sanitizer {
	return New(DefaultPolicy())
}

// Policy returns a copy of the current default policy.
func (s *Sanitizer) Policy() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// Update merges a partial override into the default policy.
// Non-transactional: last writer wins.
func (s *Sanitizer) Update(o Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = s.policy.merge(o)
}
