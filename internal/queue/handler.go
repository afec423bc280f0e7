// ABOUTME: NATS message handler for error reports
// ABOUTME: Converts wire payloads into typed error shapes and runs the pipeline

package queue

import (
	"context"
	"errors"
	"time"

	"github.com/sinugotshifhiwa4/errsift/internal/handler"
	"github.com/sinugotshifhiwa4/errsift/internal/observability"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// Handler processes report requests using the error pipeline.
type Handler struct {
	pipeline *handler.Handler
}

// NewHandler creates a new message handler.
func NewHandler(pipeline *handler.Handler) *Handler {
	return &Handler{pipeline: pipeline}
}

// ProcessRequest processes a single report request and returns the response.
func (h *Handler) ProcessRequest(ctx context.Context, req ReportRequest) ReportResponse {
	start := time.Now()
	resp := ReportResponse{
		RequestID:   req.RequestID,
		ProcessedAt: time.Now().UTC(),
	}

	if req.Source == "" {
		resp.Status = StatusError
		opErr := observability.NewOpError("REPORT_NO_SOURCE", observability.ClassInput, "report_validate")
		resp.Error = opErr.Error()
		return resp
	}

	v := req.ErrorValue()

	var rec *types.ErrorRecord
	var duplicate bool
	if req.NonFatal {
		rec, duplicate = h.pipeline.ProcessNonFatal(ctx, v, req.Source, req.Context)
	} else {
		rec, duplicate = h.pipeline.Process(ctx, v, req.Source, req.Context)
	}

	switch {
	case rec == nil:
		resp.Status = StatusSuppressed
	case duplicate:
		resp.Status = StatusDuplicate
		resp.RecordID = rec.ID
		resp.Category = rec.Category.String()
	default:
		resp.Status = StatusRecorded
		resp.RecordID = rec.ID
		resp.Category = rec.Category.String()
	}

	resp.ProcessTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return resp
}

// ProcessBatch processes multiple report requests and returns all responses.
func (h *Handler) ProcessBatch(ctx context.Context, reqs []ReportRequest) []ReportResponse {
	responses := make([]ReportResponse, 0, len(reqs))

	for _, req := range reqs {
		select {
		case <-ctx.Done():
			// Context cancelled; return partial results.
			return responses
		default:
		}

		responses = append(responses, h.ProcessRequest(ctx, req))
	}

	return responses
}

// ErrorValue reconstructs the typed error shape the payload describes.
// Precedence mirrors classification: HTTP shape, then assertion shape,
// then coded error, then raw details, then plain message.
func (r *ReportRequest) ErrorValue() any {
	if r.HTTP != nil {
		return &types.HTTPError{
			Message: r.Message,
			Response: &types.HTTPResponse{
				Status:     r.HTTP.Status,
				StatusText: r.HTTP.StatusText,
				Data:       r.HTTP.Data,
			},
			Config: &types.RequestConfig{
				URL:     r.HTTP.URL,
				Method:  r.HTTP.Method,
				Headers: r.HTTP.Headers,
			},
		}
	}

	if r.Assertion != nil {
		return &types.AssertionError{
			Message: r.Message,
			MatcherResult: &types.MatcherResult{
				Name:     r.Assertion.Name,
				Pass:     r.Assertion.Pass,
				Expected: r.Assertion.Expected,
				Actual:   r.Assertion.Actual,
				Message:  r.Assertion.Message,
				Log:      r.Assertion.Log,
			},
		}
	}

	if r.Code != "" {
		return &types.CodedError{Code: r.Code, Message: r.Message}
	}

	if r.Message == "" && len(r.Details) > 0 {
		return r.Details
	}

	return errors.New(r.Message)
}
