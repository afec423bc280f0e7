// ABOUTME: Structured operational errors for the pipeline's own failures
// ABOUTME: Error codes, retryability classification, and slog integration

package observability

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Operational error classes.
const (
	ClassTransient = "transient" // Retryable (broker outage, store timeout).
	ClassPermanent = "permanent" // Non-retryable (malformed payload).
	ClassInput     = "input"     // Caused by caller-supplied data.
)

// OpError is a structured error for failures inside the pipeline
// itself, as opposed to the error reports flowing through it.
type OpError struct {
	// Code is a unique error identifier (e.g., "INTAKE_DECODE").
	Code string `json:"code"`

	// Class classifies the failure (transient, permanent, input).
	Class string `json:"class"`

	// Operation is the operation that failed (e.g., "nats_consume").
	Operation string `json:"operation"`

	// StackTrace contains the call stack if captured.
	StackTrace string `json:"stack_trace,omitempty"`

	// Details contains additional error context.
	Details any `json:"details,omitempty"`

	// Err is the underlying error if any.
	Err error `json:"-"`
}

// NewOpError creates a new operational error.
func NewOpError(code, class, operation string) *OpError {
	return &OpError{
		Code:      code,
		Class:     class,
		Operation: operation,
	}
}

// WithStack captures the current call stack.
func (e *OpError) WithStack() *OpError {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(2, pcs[:])

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip runtime frames.
		if strings.Contains(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	e.StackTrace = sb.String()
	return e
}

// WithDetails adds additional context details.
func (e *OpError) WithDetails(details any) *OpError {
	e.Details = details
	return e
}

// WithError attaches the underlying error.
func (e *OpError) WithError(err error) *OpError {
	e.Err = err
	return e
}

// IsRetryable returns true if the failure is retryable.
func (e *OpError) IsRetryable() bool {
	return e.Class == ClassTransient
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Class, e.Operation, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Class, e.Operation)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}

// LogValue implements slog.LogValuer for structured logging.
func (e *OpError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("class", e.Class),
		slog.String("operation", e.Operation),
		slog.Bool("is_retryable", e.IsRetryable()),
	}

	if e.StackTrace != "" {
		attrs = append(attrs, slog.String("stack_trace", e.StackTrace))
	}

	if e.Details != nil {
		attrs = append(attrs, slog.Any("details", e.Details))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}
