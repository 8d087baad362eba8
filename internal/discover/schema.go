// Package discover infers the global payload field schema from a dataset of
// audit records and resolves the discovered names against the fixed metadata
// columns.
//
// Discovery is a read-only pass over the in-memory record list, under one of
// two strategies:
//
//   - Exhaustive: decode and classify every record. Correctness-maximizing
//     and slowest; the only safe choice when records sharing an operation
//     type can carry different field sets.
//   - SampledByOperation: classify one successfully-decoded representative
//     per distinct operation type. Cost scales with the number of operation
//     types, under the assumption that shape is homogeneous per type.
//
// Both strategies are idempotent: rerunning over the same dataset yields an
// identical frozen schema, since member enumeration and classification are
// pure functions of the decoded document and the frozen order is sorted.
package discover

import (
	"sort"

	"auditflat/internal/payload"
	"auditflat/internal/record"
)

// FieldDescriptor is one discovered payload column.
//
// Name is the member name exactly as found in a payload. Resolved is the
// output column name and is set by Resolve; it differs from Name only when
// Name collides with a fixed metadata column. Class follows the
// complex-wins rule: a name ever observed as array/object-valued is Complex
// even if other records carry it as a scalar, because raw-text extraction
// tolerates an occasional scalar occurrence while a direct copy of an
// occasional array would corrupt that row.
type FieldDescriptor struct {
	Name     string
	Resolved string
	Class    payload.Class
}

// Schema is the frozen set of discovered fields, sorted by original name so
// column order is deterministic across runs.
type Schema struct {
	Fields []FieldDescriptor
}

// Columns returns the resolved output column names in schema order.
func (s *Schema) Columns() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Resolved)
	}
	return out
}

// accumulator collects member classifications across one discovery pass.
// A name may land in both sets across different records; freeze applies the
// complex-wins rule. The accumulator is discarded once the schema is frozen.
type accumulator struct {
	complexSeen map[string]struct{}
	scalarSeen  map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		complexSeen: make(map[string]struct{}),
		scalarSeen:  make(map[string]struct{}),
	}
}

// merge folds one classified document into the running sets.
func (a *accumulator) merge(fields map[string]payload.Class) {
	for name, class := range fields {
		if class == payload.Complex {
			a.complexSeen[name] = struct{}{}
		} else {
			a.scalarSeen[name] = struct{}{}
		}
	}
}

// freeze collapses the accumulators into a sorted Schema. Resolved names
// are left equal to the original names; Resolve fills them in.
func (a *accumulator) freeze() *Schema {
	names := make([]string, 0, len(a.complexSeen)+len(a.scalarSeen))
	seen := make(map[string]struct{}, len(a.complexSeen)+len(a.scalarSeen))
	for n := range a.complexSeen {
		names = append(names, n)
		seen[n] = struct{}{}
	}
	for n := range a.scalarSeen {
		if _, dup := seen[n]; !dup {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	s := &Schema{Fields: make([]FieldDescriptor, 0, len(names))}
	for _, n := range names {
		class := payload.Scalar
		if _, ok := a.complexSeen[n]; ok {
			class = payload.Complex
		}
		s.Fields = append(s.Fields, FieldDescriptor{Name: n, Resolved: n, Class: class})
	}
	return s
}

// CollisionPrefix marks an output column that came from the payload rather
// than from the record's native metadata column of the same name.
const CollisionPrefix = "payload_"

// Resolve assigns every descriptor its output column name. Names that
// exactly match a fixed metadata column are prefixed with CollisionPrefix;
// everything else resolves to itself. The prefix is re-applied until the
// result is unique, so a payload that carries both "record_type" and
// "payload_record_type" still yields distinct columns.
func Resolve(s *Schema) {
	taken := make(map[string]struct{}, len(s.Fields)+9)
	for _, m := range record.MetadataColumns() {
		taken[m] = struct{}{}
	}
	for _, f := range s.Fields {
		if !record.IsMetadataColumn(f.Name) {
			taken[f.Name] = struct{}{}
		}
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		if !record.IsMetadataColumn(f.Name) {
			continue
		}
		resolved := CollisionPrefix + f.Name
		for {
			if _, clash := taken[resolved]; !clash {
				break
			}
			resolved = CollisionPrefix + resolved
		}
		f.Resolved = resolved
		taken[resolved] = struct{}{}
	}
}
