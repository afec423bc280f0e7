// ABOUTME: Message types for NATS request/reply communication
// ABOUTME: Defines ReportRequest and ReportResponse structures

package queue

import "time"

// HTTPPayload carries the HTTP-client error shape over the wire.
type HTTPPayload struct {
	// Response status code, zero when the request never completed.
	Status int `json:"status"`

	// Status text from the response, if any.
	StatusText string `json:"status_text,omitempty"`

	// Response body, if any.
	Data any `json:"data,omitempty"`

	// Request URL.
	URL string `json:"url,omitempty"`

	// Request method.
	Method string `json:"method,omitempty"`

	// Request headers.
	Headers map[string]string `json:"headers,omitempty"`
}

// AssertionPayload carries the matcher-failure shape over the wire.
type AssertionPayload struct {
	Name     string   `json:"name,omitempty"`
	Pass     bool     `json:"pass"`
	Expected any      `json:"expected,omitempty"`
	Actual   any      `json:"actual,omitempty"`
	Message  string   `json:"message,omitempty"`
	Log      []string `json:"log,omitempty"`
}

// ReportRequest is the message sent to report an error.
type ReportRequest struct {
	// Optional request ID for correlation.
	RequestID string `json:"request_id,omitempty"`

	// Source identifies the reporting component.
	Source string `json:"source"`

	// Context describes the operation that failed. Inferred when empty.
	Context string `json:"context,omitempty"`

	// Message is the raw error message.
	Message string `json:"message,omitempty"`

	// Code is an optional structured error code (e.g., "ENOENT").
	Code string `json:"code,omitempty"`

	// HTTP is set when the error came from an HTTP client.
	HTTP *HTTPPayload `json:"http,omitempty"`

	// Assertion is set when the error came from a failed matcher.
	Assertion *AssertionPayload `json:"assertion,omitempty"`

	// NonFatal marks errors that did not interrupt the reporter.
	NonFatal bool `json:"non_fatal,omitempty"`

	// Details carries arbitrary extra context.
	Details map[string]any `json:"details,omitempty"`
}

// ReportResponse is the response message for a report request.
type ReportResponse struct {
	// Request ID for correlation.
	RequestID string `json:"request_id,omitempty"`

	// Record ID assigned to the normalized record.
	RecordID string `json:"record_id,omitempty"`

	// Category the error was classified into.
	Category string `json:"category,omitempty"`

	// Status: "recorded", "duplicate", "suppressed", "error".
	Status string `json:"status"`

	// Error message if status is "error".
	Error string `json:"error,omitempty"`

	// Processing time in milliseconds.
	ProcessTimeMs float64 `json:"process_time_ms"`

	// Timestamp of processing.
	ProcessedAt time.Time `json:"processed_at"`
}

// Report statuses.
const (
	StatusRecorded   = "recorded"
	StatusDuplicate  = "duplicate"
	StatusSuppressed = "suppressed"
	StatusError      = "error"
)
