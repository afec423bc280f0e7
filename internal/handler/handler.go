// ABOUTME: Top-level error handler orchestrating build, dedup, sanitize, and emit
// ABOUTME: Suppresses expected test errors and duplicates; never raises on any input

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sinugotshifhiwa4/errsift/internal/archive"
	"github.com/sinugotshifhiwa4/errsift/internal/classify"
	"github.com/sinugotshifhiwa4/errsift/internal/dedupe"
	"github.com/sinugotshifhiwa4/errsift/internal/observability"
	"github.com/sinugotshifhiwa4/errsift/internal/record"
	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// fallbackContext marks records produced when the handler itself failed.
const fallbackContext = "Error Handler Failure"

// TestContext answers whether an HTTP status is expected for a calling
// context that declared a negative test. A nil TestContext means no
// error is ever expected.
type TestContext interface {
	IsExpectedStatus(context string, status int) bool
	IsNegativeTest(context string) bool
}

// Handler is the single entry point callers report errors to. All
// methods are safe for concurrent use and Capture never panics or
// returns an error regardless of input.
type Handler struct {
	builder   *record.Builder
	extractor *record.Extractor
	sanitizer *sanitize.Sanitizer
	deduper   *dedupe.Deduper
	sink      Sink
	tests     TestContext
	metrics   *observability.PipelineMetrics
	archive   *archive.Archive
}

// Option configures a Handler.
type Option func(*Handler)

// WithSink sets the log sink records are emitted to.
func WithSink(sink Sink) Option {
	return func(h *Handler) { h.sink = sink }
}

// WithTestContext sets the expected-status registry.
func WithTestContext(tc TestContext) Option {
	return func(h *Handler) { h.tests = tc }
}

// WithDeduper sets the dedup decision maker.
func WithDeduper(d *dedupe.Deduper) Option {
	return func(h *Handler) { h.deduper = d }
}

// WithMetrics sets the pipeline metrics collector.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithArchive persists emitted records to the given archive.
func WithArchive(a *archive.Archive) Option {
	return func(h *Handler) { h.archive = a }
}

// WithSanitizer sets the sanitizer shared by the builder and the
// defensive pre-emit pass.
func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(h *Handler) { h.sanitizer = s }
}

// New creates a Handler. Without options it uses the default
// sanitization policy, a process-local dedup cache, and a slog sink.
func New(opts ...Option) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	if h.sanitizer == nil {
		h.sanitizer = sanitize.NewDefault()
	}
	if h.deduper == nil {
		h.deduper = dedupe.New(dedupe.DefaultMaxEntries)
	}
	if h.sink == nil {
		h.sink = NewSlogSink(nil)
	}
	h.builder = record.NewBuilder(h.sanitizer)
	h.extractor = record.NewExtractor(h.sanitizer)
	return h
}

// Capture processes one reported error. Expected test errors are
// acknowledged at info severity; duplicates are suppressed silently;
// everything else is emitted as a sanitized JSON record. Capture
// recovers from any internal failure and emits a minimal fallback
// record instead.
func (h *Handler) Capture(ctx context.Context, v any, source, errContext string) {
	h.Process(ctx, v, source, errContext)
}

// Process runs the same pipeline as Capture and additionally reports
// the outcome: the built record (nil when the error was expected or
// the pipeline failed internally) and whether it was a duplicate.
func (h *Handler) Process(ctx context.Context, v any, source, errContext string) (rec *types.ErrorRecord, duplicate bool) {
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "pipeline.process")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			h.captureFailure(source, r)
			rec, duplicate = nil, false
		}
	}()

	if status, ok := h.expectedStatus(v, errContext); ok {
		h.sink.Info(fmt.Sprintf("Expected error with status %d in context %q", status, orGeneral(errContext)))
		if h.metrics != nil {
			h.metrics.RecordExpected()
		}
		return nil, false
	}

	rec = h.builder.Build(v, source, errContext)

	if h.deduper.IsDuplicate(ctx, rec.Fingerprint()) {
		if h.metrics != nil {
			h.metrics.RecordCapture(source, rec.Category.String(), time.Since(start), true)
		}
		return rec, true
	}

	h.emit(rec)

	details := h.extractor.Extract(v)
	if len(details) > 0 {
		if line, err := marshalForLog(h.sanitizer, details); err == nil {
			h.sink.Error(line)
		}
	}

	if h.archive != nil {
		if err := h.archive.Put(ctx, rec); err != nil {
			h.sink.Warn(fmt.Sprintf("failed to archive record %s: %v", rec.ID, err))
		} else if h.metrics != nil {
			h.metrics.RecordArchived(1)
		}
	}

	if h.metrics != nil {
		h.metrics.RecordCapture(source, rec.Category.String(), time.Since(start), false)
	}
	return rec, false
}

// CaptureNonFatal records an error that does not interrupt the caller.
// The context is suffixed so readers can tell it from a fatal capture.
func (h *Handler) CaptureNonFatal(ctx context.Context, v any, source, errContext string) {
	h.ProcessNonFatal(ctx, v, source, errContext)
}

// ProcessNonFatal runs the non-fatal pipeline and reports the outcome,
// so callers relaying the result see the emitted record's identity.
func (h *Handler) ProcessNonFatal(ctx context.Context, v any, source, errContext string) (*types.ErrorRecord, bool) {
	if errContext == "" {
		errContext = classify.InferContext(v)
	}
	return h.Process(ctx, v, source, errContext+" (non-fatal)")
}

// Fail logs the message as an error record and returns an error for
// the caller to propagate. The one entry point meant to halt control
// flow on an invalid precondition.
func (h *Handler) Fail(ctx context.Context, message, source string) error {
	err := errors.New(message)
	h.Capture(ctx, err, source, "")
	return err
}

// Record builds the canonical record for an error without emitting it.
func (h *Handler) Record(v any, source, errContext string) *types.ErrorRecord {
	return h.builder.Build(v, source, errContext)
}

// Message extracts the normalized message for an error.
func (h *Handler) Message(v any) string {
	return classify.ExtractMessage(v)
}

// ResetCache clears all dedup fingerprints. Test-isolation hook.
func (h *Handler) ResetCache() {
	h.deduper.Reset()
}

// expectedStatus reports the response status when the error is
// HTTP-shaped and the context declared that status expected for a
// negative test.
func (h *Handler) expectedStatus(v any, errContext string) (int, bool) {
	if h.tests == nil {
		return 0, false
	}

	httpErr := asHTTP(v)
	if httpErr == nil || httpErr.Response == nil {
		return 0, false
	}

	status := httpErr.StatusCode()
	if !h.tests.IsNegativeTest(errContext) || !h.tests.IsExpectedStatus(errContext, status) {
		return 0, false
	}
	return status, true
}

// emit serializes the record through the strict logging pass and sends
// it to the sink at error severity.
func (h *Handler) emit(rec *types.ErrorRecord) {
	line, err := marshalForLog(h.sanitizer, recordMap(rec))
	if err != nil {
		h.sink.Error(fmt.Sprintf("%s [%s] %s", rec.Source, rec.Category, rec.Message))
		return
	}
	h.sink.Error(line)
}

// captureFailure emits the minimal fallback record after an internal
// panic. A second failure here is swallowed outright.
func (h *Handler) captureFailure(source string, cause any) {
	defer func() {
		_ = recover()
	}()

	if h.metrics != nil {
		h.metrics.RecordHandlerFailure()
	}

	rec := &types.ErrorRecord{
		ID:        uuid.NewString(),
		Source:    source,
		Context:   fallbackContext,
		Message:   sanitize.CleanMessage(fmt.Sprint(cause)),
		Category:  taxonomy.Unknown,
		Timestamp: time.Now().UTC(),
	}
	line, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		h.sink.Error(rec.Message)
		return
	}
	h.sink.Error(string(line))
}

// recordMap converts the record to a generic map so the logging pass
// can walk it.
func recordMap(rec *types.ErrorRecord) map[string]any {
	data, err := json.Marshal(rec)
	if err != nil {
		return map[string]any{
			"source":   rec.Source,
			"context":  rec.Context,
			"message":  rec.Message,
			"category": rec.Category.String(),
		}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"message": rec.Message}
	}
	return m
}

// marshalForLog applies the strict logging sanitization pass and
// pretty-prints the result.
func marshalForLog(s *sanitize.Sanitizer, v any) (string, error) {
	cleaned := s.ForLogging(v)
	data, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling log record: %w", err)
	}
	return string(data), nil
}

// asHTTP unwraps v to an HTTP error shape if it has one.
func asHTTP(v any) *types.HTTPError {
	switch e := v.(type) {
	case *types.HTTPError:
		return e
	case error:
		var httpErr *types.HTTPError
		if errors.As(e, &httpErr) {
			return httpErr
		}
	}
	return nil
}

func orGeneral(errContext string) string {
	if errContext == "" {
		return classify.ContextGeneral
	}
	return errContext
}
