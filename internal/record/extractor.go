// ABOUTME: Structured detail extraction from known error shapes
// ABOUTME: Pulls sanitized side information out of HTTP and assertion errors

package record

import (
	"errors"
	"strings"

	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// Extractor pulls structured, sanitized details out of specific known
// error shapes.
type Extractor struct {
	sanitizer *sanitize.Sanitizer
}

// NewExtractor creates an extractor backed by the given sanitizer.
func NewExtractor(s *sanitize.Sanitizer) *Extractor {
	return &Extractor{sanitizer: s}
}

// Extract returns sanitized structured extras for the error value.
// Unknown shapes yield an empty mapping.
func (e *Extractor) Extract(v any) map[string]any {
	err, ok := v.(error)
	if ok {
		var assertErr *types.AssertionError
		if errors.As(err, &assertErr) && assertErr.MatcherResult != nil {
			return e.assertionDetails(assertErr)
		}

		var httpErr *types.HTTPError
		if errors.As(err, &httpErr) {
			return e.httpDetails(httpErr)
		}
		return map[string]any{}
	}

	if m, isMap := v.(map[string]any); isMap {
		sanitized, _ := e.sanitizer.Sanitize(m).(map[string]any)
		return sanitized
	}

	return map[string]any{}
}

func (e *Extractor) assertionDetails(assertErr *types.AssertionError) map[string]any {
	result := assertErr.MatcherResult

	details := map[string]any{
		"name":     result.Name,
		"pass":     result.Pass,
		"expected": e.sanitizer.Sanitize(result.Expected),
		"actual":   e.sanitizer.Sanitize(result.Actual),
		"message":  sanitize.CleanMessage(result.Message),
	}

	if len(result.Log) > 0 {
		log := make([]string, 0, len(result.Log))
		for _, entry := range result.Log {
			// Log entries carrying URLs are dropped wholesale; the rest
			// are cleaned.
			if strings.Contains(strings.ToLower(entry), "http") {
				continue
			}
			log = append(log, sanitize.CleanMessage(entry))
		}
		if len(log) > 0 {
			details["log"] = log
		}
	}

	return details
}

func (e *Extractor) httpDetails(httpErr *types.HTTPError) map[string]any {
	details := map[string]any{}

	if resp := httpErr.Response; resp != nil {
		if resp.Status != 0 {
			details["status"] = resp.Status
		}
		if resp.StatusText != "" {
			details["statusText"] = resp.StatusText
		}
		// Response bodies are included only when structured.
		if data, isMap := resp.Data.(map[string]any); isMap {
			details["data"] = e.sanitizer.Sanitize(data)
		}
		if len(resp.Headers) > 0 {
			details["headers"] = e.sanitizeHeaders(resp.Headers)
		}
	}

	if cfg := httpErr.Config; cfg != nil {
		method := cfg.Method
		if method == "" {
			method = "GET"
		}
		details["method"] = strings.ToUpper(method)
		details["url"] = urlPath(cfg.URL)
		if len(cfg.Headers) > 0 {
			details["headers"] = e.sanitizeHeaders(cfg.Headers)
		}
	}

	return details
}

func (e *Extractor) sanitizeHeaders(headers map[string]string) map[string]any {
	tree := make(map[string]any, len(headers))
	for k, v := range headers {
		tree[k] = v
	}
	sanitized, _ := e.sanitizer.Sanitize(tree).(map[string]any)
	return sanitized
}
