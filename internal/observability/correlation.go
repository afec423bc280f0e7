// ABOUTME: Correlation ID propagation for report intake and HTTP requests
// ABOUTME: Every report entering the pipeline carries one ID across log lines

package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationIDHeader is the HTTP header name for correlation IDs.
const CorrelationIDHeader = "X-Correlation-ID"

// correlationIDKey is the context key for storing correlation IDs.
type correlationIDKey struct{}

// CorrelationID ties together every log line produced while one report
// moves through the pipeline: intake, dedup, emit, archive.
type CorrelationID string

// String returns the string representation of the correlation ID.
func (c CorrelationID) String() string {
	return string(c)
}

// Attr returns the correlation ID as a slog attribute.
func (c CorrelationID) Attr() slog.Attr {
	return slog.String("correlation_id", string(c))
}

// NewCorrelationID generates a new unique correlation ID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.New().String())
}

// WithCorrelationID returns a new context with the correlation ID attached.
func WithCorrelationID(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// FromContext extracts the correlation ID from the context.
// Returns empty string if no correlation ID is present.
func FromContext(ctx context.Context) CorrelationID {
	id, ok := ctx.Value(correlationIDKey{}).(CorrelationID)
	if !ok {
		return ""
	}
	return id
}

// EnsureCorrelationID returns the context's correlation ID, generating
// and attaching one when missing. Report intake paths call this so every
// report is traceable even when the submitter sent no ID.
func EnsureCorrelationID(ctx context.Context) (context.Context, CorrelationID) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewCorrelationID()
	return WithCorrelationID(ctx, id), id
}

// ExtractOrGenerate extracts a correlation ID from the request header,
// or generates a new one if not present.
func ExtractOrGenerate(r *http.Request) CorrelationID {
	if id := r.Header.Get(CorrelationIDHeader); id != "" {
		return CorrelationID(id)
	}
	return NewCorrelationID()
}

// CorrelationMiddleware wraps an HTTP handler to inject correlation IDs.
// It extracts the correlation ID from the X-Correlation-ID header if present,
// or generates a new one. The ID is added to the request context and
// included in the response header.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ExtractOrGenerate(r)
		ctx := WithCorrelationID(r.Context(), id)

		// Set response header.
		w.Header().Set(CorrelationIDHeader, string(id))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
