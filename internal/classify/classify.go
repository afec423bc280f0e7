// ABOUTME: Error classification engine for heterogeneous runtime failures
// ABOUTME: Message extraction, context inference, and taxonomy categorization

package classify

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// FallbackMessage is used when no usable message can be extracted.
const FallbackMessage = "Unknown error occurred"

// Context labels.
const (
	ContextAPIRequest = "API Request Error"
	ContextPlaywright = "Playwright Test Error"
	ContextDatabase   = "Database Error"
	ContextPermission = "Permission Error"
	ContextGeneral    = "General Error"
)

// relativeBase resolves relative request URLs so the path component can
// still be extracted.
const relativeBase = "http://localhost"

// ExtractMessage derives a cleaned, human-readable message from an
// arbitrary error value.
func ExtractMessage(v any) string {
	switch val := v.(type) {
	case nil:
		return FallbackMessage
	case string:
		return orFallback(sanitize.CleanMessage(val))
	case error:
		if httpErr := asHTTPError(val); httpErr != nil {
			return httpMessage(httpErr)
		}
		return orFallback(sanitize.CleanMessage(val.Error()))
	case map[string]any:
		if msg, ok := val["message"].(string); ok {
			return orFallback(sanitize.CleanMessage(msg))
		}
		return FallbackMessage
	default:
		return FallbackMessage
	}
}

// InferContext derives a context label for an error value.
func InferContext(v any) string {
	if err, ok := v.(error); ok {
		if asHTTPError(err) != nil {
			return ContextAPIRequest
		}
		if assertErr := asAssertionError(err); assertErr != nil && assertErr.MatcherResult != nil {
			return ContextPlaywright
		}
	}

	msg := strings.ToLower(ExtractMessage(v))
	switch {
	case containsAny(msg, "database", "query", "sql"):
		return ContextDatabase
	case containsAny(msg, "permission", "access", "unauthorized"):
		return ContextPermission
	default:
		return ContextGeneral
	}
}

// Categorize assigns a taxonomy category to an error value.
// First match wins: HTTP shape, assertion shape, native error tiers,
// then Unknown.
func Categorize(v any) taxonomy.Category {
	err, ok := v.(error)
	if !ok {
		return taxonomy.Unknown
	}

	if httpErr := asHTTPError(err); httpErr != nil {
		return categorizeStatus(httpErr)
	}
	if assertErr := asAssertionError(err); assertErr != nil {
		return taxonomy.Test
	}
	return categorizeNative(err)
}

// categorizeStatus maps an HTTP-client error by response status code.
func categorizeStatus(e *types.HTTPError) taxonomy.Category {
	status := e.StatusCode()
	switch {
	case status == 0:
		return taxonomy.Network
	case status == http.StatusUnauthorized:
		return taxonomy.Authentication
	case status == http.StatusForbidden:
		return taxonomy.Authorization
	case status == http.StatusNotFound:
		return taxonomy.NotFound
	case status >= 400 && status < 500:
		return taxonomy.HTTPClient
	case status >= 500:
		return taxonomy.HTTPServer
	default:
		return taxonomy.Unknown
	}
}

// categorizeNative runs the two-tier code/keyword lookup for plain
// errors. A caller-assigned category is honored only when neither tier
// matches.
func categorizeNative(err error) taxonomy.Category {
	// Code tier: exact match on a structured code, highest priority.
	if code := errorCode(err); code != "" {
		for _, rule := range codeRules {
			if rule.code == code {
				return rule.category
			}
		}
	}

	// Keyword tier: lowercased message, first match in table order wins.
	msg := strings.ToLower(err.Error())
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(msg, keyword) {
				return rule.category
			}
		}
	}

	// Caller-assigned category, if it belongs to the taxonomy.
	var categorized types.Categorized
	if errors.As(err, &categorized) {
		if c := categorized.ErrorCategory(); c.Valid() {
			return c
		}
	}

	return taxonomy.Unknown
}

// errorCode extracts a structured OS error code from a coded error or a
// native syscall errno.
func errorCode(err error) string {
	var coded *types.CodedError
	if errors.As(err, &coded) {
		return strings.ToUpper(coded.Code)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errnoNames[errno]
	}
	return ""
}

// httpMessage formats an HTTP-client error as
// "HTTP {status}: {text} ({method} {path})".
func httpMessage(e *types.HTTPError) string {
	status := "Error"
	text := ""
	if e.Response != nil && e.Response.Status != 0 {
		status = fmt.Sprintf("%d", e.Response.Status)
		text = e.Response.StatusText
		if text == "" {
			text = http.StatusText(e.Response.Status)
		}
	}
	if text == "" {
		text = sanitize.CleanMessage(e.Message)
	}
	if text == "" {
		text = FallbackMessage
	}

	method := "GET"
	rawURL := ""
	if e.Config != nil {
		if e.Config.Method != "" {
			method = strings.ToUpper(e.Config.Method)
		}
		rawURL = e.Config.URL
	}

	return fmt.Sprintf("HTTP %s: %s (%s %s)", status, text, method, URLPath(rawURL))
}

// URLPath reduces a URL to its path component. Scheme, host, and query
// are discarded; relative URLs resolve against a placeholder base.
func URLPath(rawURL string) string {
	if rawURL == "" {
		return "/"
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	if !parsed.IsAbs() {
		base, _ := url.Parse(relativeBase)
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}

func asHTTPError(err error) *types.HTTPError {
	var httpErr *types.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

func asAssertionError(err error) *types.AssertionError {
	var assertErr *types.AssertionError
	if errors.As(err, &assertErr) {
		return assertErr
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orFallback(s string) string {
	if s == "" {
		return FallbackMessage
	}
	return s
}
