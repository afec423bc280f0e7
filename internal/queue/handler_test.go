// ABOUTME: Tests for the NATS report handler
// ABOUTME: Covers payload conversion, statuses, and batch processing

package queue

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sinugotshifhiwa4/errsift/internal/handler"
)

func newTestHandler() (*Handler, *handler.BufferSink) {
	sink := &handler.BufferSink{}
	pipeline := handler.New(handler.WithSink(sink))
	return NewHandler(pipeline), sink
}

func TestProcessRequest_Recorded(t *testing.T) {
	t.Parallel()

	h, sink := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{
		RequestID: "req-1",
		Source:    "dbClient",
		Message:   "database connection refused",
	})

	if resp.Status != StatusRecorded {
		t.Errorf("Status = %q, want %q", resp.Status, StatusRecorded)
	}
	if resp.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", resp.RequestID)
	}
	if resp.RecordID == "" {
		t.Error("RecordID should be set for recorded reports")
	}
	if resp.Category != "CONNECTION" {
		t.Errorf("Category = %q, want CONNECTION", resp.Category)
	}
	if got := len(sink.Errors()); got != 1 {
		t.Errorf("got %d error lines, want 1", got)
	}
}

func TestProcessRequest_Duplicate(t *testing.T) {
	t.Parallel()

	h, sink := newTestHandler()
	ctx := context.Background()

	req := ReportRequest{Source: "apiClient", Message: "request timed out"}

	first := h.ProcessRequest(ctx, req)
	second := h.ProcessRequest(ctx, req)

	if first.Status != StatusRecorded {
		t.Errorf("first Status = %q, want %q", first.Status, StatusRecorded)
	}
	if second.Status != StatusDuplicate {
		t.Errorf("second Status = %q, want %q", second.Status, StatusDuplicate)
	}
	if got := len(sink.Errors()); got != 1 {
		t.Errorf("got %d error lines, want 1: duplicate must not emit", got)
	}
}

func TestProcessRequest_MissingSource(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{Message: "boom"})

	if resp.Status != StatusError {
		t.Errorf("Status = %q, want %q", resp.Status, StatusError)
	}
	if resp.Error == "" {
		t.Error("Error should describe the validation failure")
	}
}

func TestProcessRequest_HTTPPayload(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{
		Source: "apiClient",
		HTTP: &HTTPPayload{
			Status:     503,
			StatusText: "Service Unavailable",
			URL:        "https://api.example.com/orders",
			Method:     "post",
		},
	})

	if resp.Status != StatusRecorded {
		t.Fatalf("Status = %q, want %q", resp.Status, StatusRecorded)
	}
	if resp.Category != "HTTP_SERVER" {
		t.Errorf("Category = %q, want HTTP_SERVER", resp.Category)
	}
}

func TestProcessRequest_AssertionPayload(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{
		Source:  "checkout-spec",
		Message: "expect(received).toBe(expected)",
		Assertion: &AssertionPayload{
			Name:     "toBe",
			Expected: "confirmed",
			Actual:   "pending",
		},
	})

	if resp.Status != StatusRecorded {
		t.Fatalf("Status = %q, want %q", resp.Status, StatusRecorded)
	}
	if resp.Category != "TEST" {
		t.Errorf("Category = %q, want TEST", resp.Category)
	}
}

func TestProcessRequest_CodedPayload(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{
		Source:  "fixture-loader",
		Message: "open /tmp/fixture.json failed",
		Code:    "ENOENT",
	})

	if resp.Status != StatusRecorded {
		t.Fatalf("Status = %q, want %q", resp.Status, StatusRecorded)
	}
	if resp.Category != "FILE_NOT_FOUND" {
		t.Errorf("Category = %q, want FILE_NOT_FOUND", resp.Category)
	}
}

func TestProcessRequest_NonFatal(t *testing.T) {
	t.Parallel()

	h, sink := newTestHandler()

	resp := h.ProcessRequest(context.Background(), ReportRequest{
		Source:   "teardown",
		Message:  "cleanup skipped",
		NonFatal: true,
	})

	if resp.Status != StatusRecorded {
		t.Errorf("Status = %q, want %q", resp.Status, StatusRecorded)
	}
	lines := sink.Errors()
	if len(lines) != 1 {
		t.Fatalf("got %d error lines, want 1", len(lines))
	}

	// The response must identify the record that was actually emitted.
	var emitted struct {
		ID      string `json:"id"`
		Context string `json:"context"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &emitted); err != nil {
		t.Fatalf("emitted line is not JSON: %v", err)
	}
	if emitted.ID != resp.RecordID {
		t.Errorf("RecordID = %q, emitted record id = %q", resp.RecordID, emitted.ID)
	}
	if !strings.Contains(emitted.Context, "(non-fatal)") {
		t.Errorf("Context = %q, want non-fatal suffix", emitted.Context)
	}
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	reqs := []ReportRequest{
		{Source: "apiClient", Message: "request timed out"},
		{Source: "dbClient", Message: "connection refused"},
	}

	resps := h.ProcessBatch(context.Background(), reqs)

	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	for i, resp := range resps {
		if resp.Status != StatusRecorded {
			t.Errorf("resps[%d].Status = %q, want %q", i, resp.Status, StatusRecorded)
		}
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resps := h.ProcessBatch(ctx, []ReportRequest{
		{Source: "apiClient", Message: "request timed out"},
	})

	if len(resps) != 0 {
		t.Errorf("got %d responses, want 0 for cancelled context", len(resps))
	}
}
