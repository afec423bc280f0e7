// ABOUTME: Tests for the canonical error record
// ABOUTME: Covers fingerprint derivation and JSON field behavior

package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	rec := &ErrorRecord{
		Source:   "dbClient",
		Category: taxonomy.Connection,
		Message:  "connection refused",
	}

	got := rec.Fingerprint()
	want := "dbClient_CONNECTION_connection refused"
	if got != want {
		t.Errorf("Fingerprint() = %q, want %q", got, want)
	}
}

func TestFingerprint_TruncatesLongMessages(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	a := &ErrorRecord{Source: "svc", Category: taxonomy.Unknown, Message: long + "A"}
	b := &ErrorRecord{Source: "svc", Category: taxonomy.Unknown, Message: long + "B"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("messages sharing a 50-char prefix should share a fingerprint")
	}
	if got := a.Fingerprint(); len(got) > len("svc_UNKNOWN_")+50 {
		t.Errorf("Fingerprint() length = %d, message portion should cap at 50", len(got))
	}
}

func TestFingerprint_DiffersBySourceAndCategory(t *testing.T) {
	t.Parallel()

	base := ErrorRecord{Source: "svc", Category: taxonomy.Timeout, Message: "deadline exceeded"}

	other := base
	other.Source = "worker"
	if base.Fingerprint() == other.Fingerprint() {
		t.Error("different sources should produce different fingerprints")
	}

	other = base
	other.Category = taxonomy.Connection
	if base.Fingerprint() == other.Fingerprint() {
		t.Error("different categories should produce different fingerprints")
	}
}

func TestErrorRecord_JSONOmitsEmptyOptionals(t *testing.T) {
	t.Parallel()

	rec := &ErrorRecord{
		Source:   "svc",
		Context:  "fetchUser",
		Message:  "boom",
		Category: taxonomy.Unknown,
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	s := string(raw)
	for _, absent := range []string{"status_code", "url", "details", "\"id\""} {
		if strings.Contains(s, absent) {
			t.Errorf("JSON should omit empty %s, got %s", absent, s)
		}
	}
	if !strings.Contains(s, `"category":"UNKNOWN"`) {
		t.Errorf("JSON should always carry category, got %s", s)
	}
}
