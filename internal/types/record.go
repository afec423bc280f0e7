// ABOUTME: Canonical error record produced by the pipeline
// ABOUTME: Sanitized, categorized output unit plus its dedup fingerprint

package types

import (
	"fmt"
	"time"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

// fingerprintMessageLen is how much of the message participates in the
// dedup fingerprint. Long messages with identical prefixes collapse into
// one fingerprint on purpose.
const fingerprintMessageLen = 50

// ErrorRecord is the canonical, safe-to-log representation of a runtime
// failure.
type ErrorRecord struct {
	// ID uniquely identifies this record instance.
	ID string `json:"id,omitempty"`

	// Source identifies the calling component or operation.
	Source string `json:"source"`

	// Context is the inferred or supplied context label. Never empty.
	Context string `json:"context"`

	// Message is the cleaned, single-line error message.
	Message string `json:"message"`

	// Category is the taxonomy member assigned by the classifier.
	Category taxonomy.Category `json:"category"`

	// StatusCode is set only for network/HTTP-shaped errors.
	StatusCode int `json:"status_code,omitempty"`

	// URL is the path-only request URL for network/HTTP-shaped errors.
	URL string `json:"url,omitempty"`

	// Details holds sanitized structured extras, varying by error shape.
	Details map[string]any `json:"details,omitempty"`

	// Timestamp records when the error was captured.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Fingerprint derives the dedup key for the record.
func (r *ErrorRecord) Fingerprint() string {
	msg := r.Message
	if len(msg) > fingerprintMessageLen {
		msg = msg[:fingerprintMessageLen]
	}
	return fmt.Sprintf("%s_%s_%s", r.Source, r.Category, msg)
}
