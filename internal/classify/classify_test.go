// ABOUTME: Tests for the classification engine
// ABOUTME: Covers message extraction, context inference, and both categorization tiers

package classify

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

func TestExtractMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{
			name:     "native_error",
			input:    errors.New("Error: something failed"),
			expected: "something failed",
		},
		{
			name: "http_error_full",
			input: &types.HTTPError{
				Response: &types.HTTPResponse{Status: 404},
				Config:   &types.RequestConfig{URL: "https://api.example.com/users/42", Method: "GET"},
			},
			expected: "HTTP 404: Not Found (GET /users/42)",
		},
		{
			name: "http_error_no_response",
			input: &types.HTTPError{
				Message: "socket hang up",
				Config:  &types.RequestConfig{URL: "/health", Method: "post"},
			},
			expected: "HTTP Error: socket hang up (POST /health)",
		},
		{
			name: "http_error_status_text",
			input: &types.HTTPError{
				Response: &types.HTTPResponse{Status: 503, StatusText: "Service Unavailable"},
			},
			expected: "HTTP 503: Service Unavailable (GET /)",
		},
		{
			name:     "plain_string",
			input:    "  'quoted failure'  ",
			expected: "quoted failure",
		},
		{
			name:     "generic_object_with_message",
			input:    map[string]any{"message": "object failure"},
			expected: "object failure",
		},
		{
			name:     "generic_object_without_message",
			input:    map[string]any{"code": 1},
			expected: FallbackMessage,
		},
		{
			name:     "nil",
			input:    nil,
			expected: FallbackMessage,
		},
		{
			name:     "number",
			input:    42,
			expected: FallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractMessage(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInferContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{
			name:     "http_error",
			input:    &types.HTTPError{Response: &types.HTTPResponse{Status: 500}},
			expected: ContextAPIRequest,
		},
		{
			name: "assertion_error",
			input: &types.AssertionError{
				Message:       "expect(received).toBe(expected)",
				MatcherResult: &types.MatcherResult{Name: "toBe"},
			},
			expected: ContextPlaywright,
		},
		{
			name:     "database_keyword",
			input:    errors.New("database connection failed"),
			expected: ContextDatabase,
		},
		{
			name:     "sql_keyword",
			input:    errors.New("bad SQL near SELECT"),
			expected: ContextDatabase,
		},
		{
			name:     "permission_keyword",
			input:    errors.New("unauthorized operation"),
			expected: ContextPermission,
		},
		{
			name:     "general",
			input:    errors.New("something odd"),
			expected: ContextGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InferContext(tt.input)
			if got != tt.expected {
				t.Errorf("InferContext() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCategorizeHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		expected taxonomy.Category
	}{
		{name: "no_status", status: 0, expected: taxonomy.Network},
		{name: "401", status: 401, expected: taxonomy.Authentication},
		{name: "403", status: 403, expected: taxonomy.Authorization},
		{name: "404", status: 404, expected: taxonomy.NotFound},
		{name: "400", status: 400, expected: taxonomy.HTTPClient},
		{name: "422", status: 422, expected: taxonomy.HTTPClient},
		{name: "503", status: 503, expected: taxonomy.HTTPServer},
		{name: "500", status: 500, expected: taxonomy.HTTPServer},
		{name: "302", status: 302, expected: taxonomy.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := &types.HTTPError{}
			if tt.status != 0 {
				input.Response = &types.HTTPResponse{Status: tt.status}
			}
			got := Categorize(input)
			if got != tt.expected {
				t.Errorf("Categorize(status=%d) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestCategorizeCodeTierBeatsKeywords(t *testing.T) {
	t.Parallel()

	// Message mentions "permission" but the structured code wins.
	input := &types.CodedError{Code: "ENOENT", Message: "permission problem while opening file"}
	got := Categorize(input)
	if got != taxonomy.FileNotFound {
		t.Errorf("Categorize() = %v, want %v", got, taxonomy.FileNotFound)
	}
}

func TestCategorizeCodeTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     string
		expected taxonomy.Category
	}{
		{code: "ENOENT", expected: taxonomy.FileNotFound},
		{code: "EISDIR", expected: taxonomy.PathIsDirectory},
		{code: "ENOTDIR", expected: taxonomy.NotADirectory},
		{code: "ENOTEMPTY", expected: taxonomy.DirectoryNotEmpty},
		{code: "EEXIST", expected: taxonomy.FileExists},
		{code: "EACCES", expected: taxonomy.AccessDenied},
		{code: "EBUSY", expected: taxonomy.FileBusy},
		{code: "EFBIG", expected: taxonomy.FileTooLarge},
		{code: "ENAMETOOLONG", expected: taxonomy.FileNameTooLong},
		{code: "ENOSPC", expected: taxonomy.NoSpace},
		{code: "EROFS", expected: taxonomy.ReadOnlyFileSystem},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			got := Categorize(&types.CodedError{Code: tt.code, Message: "x"})
			if got != tt.expected {
				t.Errorf("Categorize(%s) = %v, want %v", tt.code, got, tt.expected)
			}
		})
	}
}

func TestCategorizeSyscallErrno(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("open config: %w", syscall.ENOENT)
	got := Categorize(wrapped)
	if got != taxonomy.FileNotFound {
		t.Errorf("Categorize(wrapped ENOENT) = %v, want %v", got, taxonomy.FileNotFound)
	}
}

func TestCategorizeKeywordOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		expected taxonomy.Category
	}{
		// "connection" precedes "database" in the table.
		{name: "connection_before_database", message: "Database connection failed: ECONNREFUSED", expected: taxonomy.Connection},
		// "timeout" resolves to Timeout, not Performance.
		{name: "timeout_before_performance", message: "operation timeout while rendering", expected: taxonomy.Timeout},
		{name: "query", message: "query returned no rows", expected: taxonomy.Query},
		{name: "transaction", message: "transaction aborted", expected: taxonomy.Transaction},
		{name: "constraint", message: "duplicate key value", expected: taxonomy.Constraint},
		{name: "permission", message: "permission denied for table", expected: taxonomy.Permission},
		{name: "not_found", message: "user record missing", expected: taxonomy.NotFound},
		{name: "authentication", message: "login rejected", expected: taxonomy.Authentication},
		{name: "authorization", message: "forbidden resource", expected: taxonomy.Authorization},
		{name: "network", message: "network unreachable", expected: taxonomy.Network},
		{name: "element_before_selector", message: "locator resolved to 0 elements", expected: taxonomy.Element},
		{name: "validation", message: "schema mismatch on field", expected: taxonomy.Validation},
		{name: "parsing", message: "failed to parse payload", expected: taxonomy.Parsing},
		{name: "memory", message: "heap exhausted", expected: taxonomy.Memory},
		{name: "fs_phrase", message: "ENOENT: no such file or directory", expected: taxonomy.FileNotFound},
		{name: "unknown", message: "zzz", expected: taxonomy.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Categorize(errors.New(tt.message))
			if got != tt.expected {
				t.Errorf("Categorize(%q) = %v, want %v", tt.message, got, tt.expected)
			}
		})
	}
}

func TestCategorizeHonorsUserCategory(t *testing.T) {
	t.Parallel()

	input := &types.CategorizedError{Message: "zzz", Category: taxonomy.Fixture}
	got := Categorize(input)
	if got != taxonomy.Fixture {
		t.Errorf("Categorize() = %v, want %v", got, taxonomy.Fixture)
	}

	// Keyword tier still outranks the user-assigned category.
	conflicting := &types.CategorizedError{Message: "network down", Category: taxonomy.Fixture}
	got = Categorize(conflicting)
	if got != taxonomy.Network {
		t.Errorf("Categorize() = %v, want %v", got, taxonomy.Network)
	}
}

func TestCategorizeNonError(t *testing.T) {
	t.Parallel()

	if got := Categorize("just a string"); got != taxonomy.Unknown {
		t.Errorf("Categorize(string) = %v, want %v", got, taxonomy.Unknown)
	}
	if got := Categorize(nil); got != taxonomy.Unknown {
		t.Errorf("Categorize(nil) = %v, want %v", got, taxonomy.Unknown)
	}
}

func TestURLPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "absolute", input: "https://api.example.com/users/42", expected: "/users/42"},
		{name: "with_query", input: "https://api.example.com/search?q=secret", expected: "/search"},
		{name: "relative", input: "/health", expected: "/health"},
		{name: "relative_no_slash", input: "health", expected: "/health"},
		{name: "empty", input: "", expected: "/"},
		{name: "host_only", input: "https://api.example.com", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := URLPath(tt.input)
			if got != tt.expected {
				t.Errorf("URLPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
