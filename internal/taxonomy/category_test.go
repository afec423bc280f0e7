// ABOUTME: Tests for the closed category taxonomy
// ABOUTME: Validates name round-trips, parsing, and JSON encoding

package taxonomy

import (
	"encoding/json"
	"testing"
)

func TestCategoryString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category Category
		expected string
	}{
		{name: "unknown", category: Unknown, expected: "UNKNOWN"},
		{name: "network", category: Network, expected: "NETWORK"},
		{name: "http_client", category: HTTPClient, expected: "HTTP_CLIENT"},
		{name: "file_not_found", category: FileNotFound, expected: "FILE_NOT_FOUND"},
		{name: "read_only_fs", category: ReadOnlyFileSystem, expected: "READ_ONLY_FILE_SYSTEM"},
		{name: "conflict", category: Conflict, expected: "CONFLICT"},
		{name: "out_of_range", category: Category(9999), expected: "UNKNOWN"},
		{name: "negative", category: Category(-1), expected: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.category.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range All() {
		parsed, err := Parse(c.String())
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("Parse(%q) = %v, want %v", c.String(), parsed, c)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected Category
		wantErr  bool
	}{
		{name: "exact", input: "TIMEOUT", expected: Timeout},
		{name: "lowercase", input: "timeout", expected: Timeout},
		{name: "whitespace", input: "  NETWORK  ", expected: Network},
		{name: "unrecognized", input: "NOT_A_CATEGORY", expected: Unknown, wantErr: true},
		{name: "empty", input: "", expected: Unknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCategoryJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Authentication)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"AUTHENTICATION"` {
		t.Errorf("Marshal() = %s, want %q", data, `"AUTHENTICATION"`)
	}

	var c Category
	if err := json.Unmarshal([]byte(`"QUERY"`), &c); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if c != Query {
		t.Errorf("Unmarshal() = %v, want %v", c, Query)
	}

	// Unrecognized names decode to Unknown without failing.
	if err := json.Unmarshal([]byte(`"FUTURE_CATEGORY"`), &c); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if c != Unknown {
		t.Errorf("Unmarshal() = %v, want %v", c, Unknown)
	}
}
