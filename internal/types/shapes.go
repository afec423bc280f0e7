// ABOUTME: Error shapes the pipeline consumes from external collaborators
// ABOUTME: HTTP-client errors, assertion errors, coded errors, and category carriers

package types

import (
	"fmt"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

// HTTPResponse mirrors the response portion of an HTTP-client error.
type HTTPResponse struct {
	// Status is the HTTP status code. Zero means no response was received.
	Status int `json:"status,omitempty"`

	// StatusText is the reason phrase, if the client captured one.
	StatusText string `json:"status_text,omitempty"`

	// Data is the decoded response body, if any.
	Data any `json:"data,omitempty"`

	// Headers are the response headers.
	Headers map[string]string `json:"headers,omitempty"`
}

// RequestConfig mirrors the request portion of an HTTP-client error.
type RequestConfig struct {
	// URL is the request URL, absolute or relative.
	URL string `json:"url,omitempty"`

	// Method is the HTTP method. Empty defaults to GET downstream.
	Method string `json:"method,omitempty"`

	// Headers are the request headers.
	Headers map[string]string `json:"headers,omitempty"`
}

// HTTPError is the HTTP-client error shape.
//
// Response and Config are both optional: a connection failure carries a
// Config but no Response.
type HTTPError struct {
	Message  string        `json:"message,omitempty"`
	Response *HTTPResponse `json:"response,omitempty"`
	Config   *RequestConfig `json:"config,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Response != nil && e.Response.Status != 0 {
		return fmt.Sprintf("http error: status %d: %s", e.Response.Status, e.Message)
	}
	return fmt.Sprintf("http error: %s", e.Message)
}

// StatusCode returns the response status, or zero if no response exists.
func (e *HTTPError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// MatcherResult is the assertion metadata attached by an assertion
// framework to a failed expectation.
type MatcherResult struct {
	Name     string   `json:"name,omitempty"`
	Pass     bool     `json:"pass"`
	Expected any      `json:"expected,omitempty"`
	Actual   any      `json:"actual,omitempty"`
	Message  string   `json:"message,omitempty"`
	Log      []string `json:"log,omitempty"`
}

// AssertionError is the assertion/matcher error shape.
type AssertionError struct {
	Message       string         `json:"message,omitempty"`
	MatcherResult *MatcherResult `json:"matcherResult,omitempty"`
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return e.Message
}

// CodedError carries a structured OS-style error code (ENOENT, EACCES, ...)
// alongside its message. Callers that capture filesystem failures from
// other runtimes report them in this shape.
type CodedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// Categorized is implemented by errors that carry their own taxonomy
// category. The classifier honors it only when no code or keyword tier
// matches.
type Categorized interface {
	ErrorCategory() taxonomy.Category
}

// CategorizedError is a plain error with a caller-assigned category.
type CategorizedError struct {
	Message  string
	Category taxonomy.Category
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	return e.Message
}

// ErrorCategory implements Categorized.
func (e *CategorizedError) ErrorCategory() taxonomy.Category {
	return e.Category
}
