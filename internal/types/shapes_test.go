// ABOUTME: Tests for external error shapes
// ABOUTME: Covers error interface output and status extraction

package types

import (
	"testing"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

func TestHTTPError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *HTTPError
		want string
	}{
		{
			name: "with_response",
			err: &HTTPError{
				Message:  "not found",
				Response: &HTTPResponse{Status: 404},
			},
			want: "http error: status 404: not found",
		},
		{
			name: "no_response",
			err:  &HTTPError{Message: "connection refused"},
			want: "http error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPError_StatusCode(t *testing.T) {
	t.Parallel()

	withResp := &HTTPError{Response: &HTTPResponse{Status: 503}}
	if got := withResp.StatusCode(); got != 503 {
		t.Errorf("StatusCode() = %d, want 503", got)
	}

	noResp := &HTTPError{Message: "dial tcp: refused"}
	if got := noResp.StatusCode(); got != 0 {
		t.Errorf("StatusCode() = %d, want 0 for missing response", got)
	}
}

func TestCodedError_Error(t *testing.T) {
	t.Parallel()

	withMsg := &CodedError{Code: "ENOENT", Message: "no such file"}
	if got := withMsg.Error(); got != "no such file" {
		t.Errorf("Error() = %q, want %q", got, "no such file")
	}

	codeOnly := &CodedError{Code: "EACCES"}
	if got := codeOnly.Error(); got != "EACCES" {
		t.Errorf("Error() = %q, want code when message empty", got)
	}
}

func TestCategorizedError(t *testing.T) {
	t.Parallel()

	err := &CategorizedError{Message: "shard moved", Category: taxonomy.Database}
	if got := err.Error(); got != "shard moved" {
		t.Errorf("Error() = %q, want %q", got, "shard moved")
	}
	if got := err.ErrorCategory(); got != taxonomy.Database {
		t.Errorf("ErrorCategory() = %v, want %v", got, taxonomy.Database)
	}
}
