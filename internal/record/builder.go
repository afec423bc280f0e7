// ABOUTME: Canonical error record construction
// ABOUTME: Composes classifier output and extracted details into one record

package record

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sinugotshifhiwa4/errsift/internal/classify"
	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// maxMessageLen bounds the record message.
const maxMessageLen = 500

// Builder composes classification and detail extraction into canonical
// error records.
type Builder struct {
	sanitizer *sanitize.Sanitizer
	extractor *Extractor
}

// NewBuilder creates a builder backed by the given sanitizer.
func NewBuilder(s *sanitize.Sanitizer) *Builder {
	return &Builder{
		sanitizer: s,
		extractor: NewExtractor(s),
	}
}

// Build normalizes an arbitrary error value into an ErrorRecord.
//
// context overrides inference when non-empty. The record's context is
// never empty and its category is always a taxonomy member.
func (b *Builder) Build(v any, source, context string) *types.ErrorRecord {
	if context == "" {
		context = classify.InferContext(v)
	}

	message := classify.ExtractMessage(v)
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen] + "..."
	}

	rec := &types.ErrorRecord{
		ID:        uuid.NewString(),
		Source:    source,
		Context:   context,
		Message:   message,
		Category:  classify.Categorize(v),
		Timestamp: time.Now().UTC(),
	}

	if err, ok := v.(error); ok {
		var httpErr *types.HTTPError
		if errors.As(err, &httpErr) {
			rec.StatusCode = httpErr.StatusCode()
			if httpErr.Config != nil {
				rec.URL = urlPath(httpErr.Config.URL)
			}
		}
	}

	if details := b.extractor.Extract(v); len(details) > 0 {
		rec.Details = details
	}

	return rec
}

// urlPath strips a URL to its path component.
func urlPath(rawURL string) string {
	return classify.URLPath(rawURL)
}
