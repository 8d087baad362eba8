package record

import (
	"reflect"
	"testing"
)

// TestMetadataColumns pins the fixed column set and its output order, and
// verifies callers get a copy they can safely modify.
func TestMetadataColumns(t *testing.T) {
	t.Parallel()

	want := []string{
		"created_at", "identity", "operation", "record_type",
		"result_count", "result_index", "user_ids", "payload", "decode_failure",
	}
	got := MetadataColumns()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MetadataColumns() = %v, want %v", got, want)
	}

	got[0] = "mutated"
	if MetadataColumns()[0] != "created_at" {
		t.Fatalf("MetadataColumns() returns shared backing storage")
	}
}

// TestIsMetadataColumn verifies exact, case-sensitive matching.
func TestIsMetadataColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"operation", true},
		{"decode_failure", true},
		{"Operation", false},
		{"operation ", false},
		{"amount", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMetadataColumn(tt.name); got != tt.want {
			t.Fatalf("IsMetadataColumn(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestMetadataValues verifies alignment with MetadataColumns and the
// list-join behavior for user IDs.
func TestMetadataValues(t *testing.T) {
	t.Parallel()

	r := &AuditRecord{
		CreatedAt:   "2024-01-02T03:04:05Z",
		Identity:    "svc-a",
		Operation:   "Search",
		RecordType:  "audit",
		ResultCount: "3",
		ResultIndex: "0",
		UserIDs:     []string{"u1", "u2"},
		Payload:     `{"total":3}`,
	}

	got := r.MetadataValues(";")
	if len(got) != len(MetadataColumns()) {
		t.Fatalf("value count %d does not match column count %d", len(got), len(MetadataColumns()))
	}
	want := []string{"2024-01-02T03:04:05Z", "svc-a", "Search", "audit", "3", "0", "u1;u2", `{"total":3}`, ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MetadataValues = %v, want %v", got, want)
	}
}

// TestFlattenedRowCell verifies that absent cells and nil cell maps render
// as empty values.
func TestFlattenedRowCell(t *testing.T) {
	t.Parallel()

	row := &FlattenedRow{Record: &AuditRecord{}, Cells: map[string]string{"present": "v"}}
	if got := row.Cell("present"); got != "v" {
		t.Fatalf("Cell(present) = %q", got)
	}
	if got := row.Cell("absent"); got != "" {
		t.Fatalf("Cell(absent) = %q", got)
	}

	empty := &FlattenedRow{Record: &AuditRecord{}}
	if got := empty.Cell("anything"); got != "" {
		t.Fatalf("Cell on nil map = %q", got)
	}
}
