package payload

import (
	"strings"
	"testing"
)

//
// Decode
//

// TestDecode verifies the per-record decode contract: valid object payloads
// decode, while malformed text and non-object roots produce a DecodeError
// instead of a panic or a batch abort.
func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"object", `{"a":1}`, false},
		{"empty object", `{}`, false},
		{"nested members", `{"a":{"b":1},"c":[1,2]}`, false},
		{"malformed", `{"a":`, true},
		{"truncated string", `{"a":"x`, true},
		{"empty input", ``, true},
		{"garbage", `not json at all`, true},
		{"array root", `[1,2,3]`, true},
		{"scalar root", `42`, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, derr := NewDecoder().Decode(tt.raw)
			if tt.wantErr {
				if derr == nil {
					t.Fatalf("Decode(%q) = nil error, want DecodeError", tt.raw)
				}
				if derr.Msg == "" {
					t.Fatalf("DecodeError has empty message")
				}
				return
			}
			if derr != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.raw, derr)
			}
			if doc == nil {
				t.Fatalf("Decode(%q) returned nil document", tt.raw)
			}
		})
	}
}

// TestDiagnosticTruncation verifies that the persisted diagnostic is the
// first MaxDiagnosticLen characters of the decoder message. Parser errors
// embed the failing payload, so untruncated messages can be arbitrarily
// long.
func TestDiagnosticTruncation(t *testing.T) {
	t.Parallel()

	long := `{"field":` + strings.Repeat("x", 500)
	_, derr := NewDecoder().Decode(long)
	if derr == nil {
		t.Fatalf("Decode did not fail for malformed payload")
	}

	diag := derr.Diagnostic()
	if len(diag) > MaxDiagnosticLen {
		t.Fatalf("Diagnostic() length = %d, want <= %d", len(diag), MaxDiagnosticLen)
	}
	if want := Truncate(derr.Msg, MaxDiagnosticLen); diag != want {
		t.Fatalf("Diagnostic() = %q, want first %d chars of message %q", diag, MaxDiagnosticLen, derr.Msg)
	}
}

// TestTruncate verifies the byte-bounded cut used for diagnostics.
func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exactly limit", "abcde", 5, "abcde"},
		{"longer than limit", "abcdefgh", 5, "abcde"},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
