// ABOUTME: Tests for record building and detail extraction
// ABOUTME: End-to-end record shapes for plain, HTTP, assertion, and generic errors

package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/sinugotshifhiwa4/errsift/internal/classify"
	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

func newBuilder() *Builder {
	return NewBuilder(sanitize.NewDefault())
}

func TestBuildPlainError(t *testing.T) {
	t.Parallel()

	rec := newBuilder().Build(errors.New("Database connection failed: ECONNREFUSED"), "dbClient", "")

	if rec.Source != "dbClient" {
		t.Errorf("Source = %q, want %q", rec.Source, "dbClient")
	}
	if rec.Category != taxonomy.Connection {
		t.Errorf("Category = %v, want %v", rec.Category, taxonomy.Connection)
	}
	if rec.Message != "Database connection failed: ECONNREFUSED" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Context != classify.ContextDatabase {
		t.Errorf("Context = %q, want %q", rec.Context, classify.ContextDatabase)
	}
	if rec.ID == "" {
		t.Error("ID is empty")
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestBuildHTTPError(t *testing.T) {
	t.Parallel()

	input := &types.HTTPError{
		Response: &types.HTTPResponse{Status: 404},
		Config: &types.RequestConfig{
			URL:    "https://api.example.com/users/42",
			Method: "GET",
			Headers: map[string]string{
				"Authorization": "Bearer abc",
				"Accept":        "application/json",
			},
		},
	}

	rec := newBuilder().Build(input, "apiClient", "")

	if rec.Message != "HTTP 404: Not Found (GET /users/42)" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Category != taxonomy.NotFound {
		t.Errorf("Category = %v, want %v", rec.Category, taxonomy.NotFound)
	}
	if rec.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", rec.StatusCode)
	}
	if rec.URL != "/users/42" {
		t.Errorf("URL = %q, want %q", rec.URL, "/users/42")
	}
	if rec.Context != classify.ContextAPIRequest {
		t.Errorf("Context = %q, want %q", rec.Context, classify.ContextAPIRequest)
	}

	headers, ok := rec.Details["headers"].(map[string]any)
	if !ok {
		t.Fatalf("details headers missing: %#v", rec.Details)
	}
	if headers["Authorization"] != sanitize.DefaultMask {
		t.Errorf("Authorization header = %v, want mask", headers["Authorization"])
	}
	if headers["Accept"] != "application/json" {
		t.Errorf("Accept header = %v", headers["Accept"])
	}
}

func TestBuildAssertionError(t *testing.T) {
	t.Parallel()

	input := &types.AssertionError{
		Message: "expect(received).toBe(expected)",
		MatcherResult: &types.MatcherResult{
			Name:     "toBe",
			Pass:     false,
			Expected: "visible",
			Actual:   "hidden",
			Message:  "Error: expect failed",
			Log: []string{
				"waiting for locator",
				"navigated to https://app.example.com/login",
				"attempt #2",
			},
		},
	}

	rec := newBuilder().Build(input, "loginTest", "")

	if rec.Category != taxonomy.Test {
		t.Errorf("Category = %v, want %v", rec.Category, taxonomy.Test)
	}
	if rec.Context != classify.ContextPlaywright {
		t.Errorf("Context = %q, want %q", rec.Context, classify.ContextPlaywright)
	}
	if rec.Details["name"] != "toBe" {
		t.Errorf("details name = %v", rec.Details["name"])
	}
	if rec.Details["message"] != "expect failed" {
		t.Errorf("details message = %v", rec.Details["message"])
	}

	log, ok := rec.Details["log"].([]string)
	if !ok {
		t.Fatalf("details log missing: %#v", rec.Details)
	}
	if len(log) != 2 {
		t.Fatalf("log length = %d, want 2 (URL entry dropped): %#v", len(log), log)
	}
	for _, entry := range log {
		if strings.Contains(strings.ToLower(entry), "http") {
			t.Errorf("log entry %q carries a URL", entry)
		}
	}
}

func TestBuildGenericObject(t *testing.T) {
	t.Parallel()

	rec := newBuilder().Build(map[string]any{
		"message": "worker crashed",
		"token":   "should-hide",
	}, "worker", "")

	if rec.Message != "worker crashed" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Details["token"] != sanitize.DefaultMask {
		t.Errorf("details token = %v, want mask", rec.Details["token"])
	}
}

func TestBuildSuppliedContextWins(t *testing.T) {
	t.Parallel()

	rec := newBuilder().Build(errors.New("database down"), "svc", "Checkout Flow")
	if rec.Context != "Checkout Flow" {
		t.Errorf("Context = %q, want supplied context", rec.Context)
	}
}

func TestBuildMessageBounded(t *testing.T) {
	t.Parallel()

	rec := newBuilder().Build(errors.New(strings.Repeat("a", 2000)), "svc", "")
	if len(rec.Message) > maxMessageLen+3 {
		t.Errorf("message length = %d, want <= %d", len(rec.Message), maxMessageLen+3)
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	rec := newBuilder().Build(errors.New("network unreachable"), "svc", "")
	fp := rec.Fingerprint()

	if !strings.HasPrefix(fp, "svc_NETWORK_") {
		t.Errorf("Fingerprint() = %q, want svc_NETWORK_ prefix", fp)
	}

	// Messages sharing a 50-char prefix collapse to one fingerprint.
	long := strings.Repeat("x", 60)
	a := newBuilder().Build(errors.New(long+"1"), "svc", "")
	b := newBuilder().Build(errors.New(long+"2"), "svc", "")
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("fingerprints differ for shared prefix: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
}
