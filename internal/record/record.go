// Package record defines the in-memory representation of one audit trail
// entry and of one flattened output row.
//
// An AuditRecord carries a small fixed set of metadata fields plus the raw
// text of an embedded JSON payload whose shape varies by operation type.
// The loader populates every field except DecodeFailure; the plan executor
// sets DecodeFailure at most once, when the payload fails to decode.
package record

import "strings"

// Fixed metadata column names, in stable output order. Payload-derived
// columns always come after these, alphabetically.
const (
	ColCreatedAt     = "created_at"
	ColIdentity      = "identity"
	ColOperation     = "operation"
	ColRecordType    = "record_type"
	ColResultCount   = "result_count"
	ColResultIndex   = "result_index"
	ColUserIDs       = "user_ids"
	ColPayload       = "payload"
	ColDecodeFailure = "decode_failure"
)

// MetadataColumns returns the fixed column names in output order.
// The returned slice is a fresh copy; callers may modify it.
func MetadataColumns() []string {
	return []string{
		ColCreatedAt,
		ColIdentity,
		ColOperation,
		ColRecordType,
		ColResultCount,
		ColResultIndex,
		ColUserIDs,
		ColPayload,
		ColDecodeFailure,
	}
}

// IsMetadataColumn reports whether name exactly matches one of the fixed
// metadata column names. Matching is case-sensitive: payload member names
// collide only when they are byte-identical to a metadata column.
func IsMetadataColumn(name string) bool {
	switch name {
	case ColCreatedAt, ColIdentity, ColOperation, ColRecordType,
		ColResultCount, ColResultIndex, ColUserIDs, ColPayload, ColDecodeFailure:
		return true
	}
	return false
}

// AuditRecord is one input row.
//
// Payload is immutable input text; it is never rewritten, only read (once
// during discovery, once during execution). DecodeFailure starts empty and
// is set at most once by the executor.
type AuditRecord struct {
	CreatedAt   string
	Identity    string
	Operation   string
	RecordType  string
	ResultCount string
	ResultIndex string
	UserIDs     []string

	// Payload is the raw embedded-document text exactly as loaded.
	Payload string

	// DecodeFailure holds the truncated decoder diagnostic for this record,
	// or "" when the payload decoded cleanly (or was never decoded).
	DecodeFailure string
}

// MetadataValues returns the record's fixed-column values aligned with
// MetadataColumns. The UserIDs list is joined with sep.
func (r *AuditRecord) MetadataValues(sep string) []string {
	return []string{
		r.CreatedAt,
		r.Identity,
		r.Operation,
		r.RecordType,
		r.ResultCount,
		r.ResultIndex,
		strings.Join(r.UserIDs, sep),
		r.Payload,
		r.DecodeFailure,
	}
}

// FlattenedRow is the executor's output for one AuditRecord: the fixed
// metadata values plus one cell per extraction instruction. Cells holds
// values keyed by resolved column name; absent fields have no entry and
// render as empty cells.
type FlattenedRow struct {
	Record *AuditRecord
	Cells  map[string]string
}

// Cell returns the value for a resolved payload column, or "" when the
// field was absent in this record's payload.
func (fr *FlattenedRow) Cell(column string) string {
	if fr.Cells == nil {
		return ""
	}
	return fr.Cells[column]
}
