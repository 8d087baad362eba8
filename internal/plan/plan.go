// Package plan turns a resolved schema into an ordered sequence of per-field
// extraction instructions and applies that sequence uniformly to every
// record in the dataset.
//
// The plan is a first-class data structure built once per run and then
// interpreted against each row. Mode selection is a pure function of the
// field's classification and never changes after synthesis:
//
//   - Scalar  -> DirectCopy: read the member from the decoded document.
//   - Complex -> RawBracketExtract: recover the member's key-value pair as a
//     literal substring of the untouched payload text.
package plan

import (
	"auditflat/internal/discover"
	"auditflat/internal/payload"
)

// Mode is the extraction mechanism for one field.
type Mode int

const (
	DirectCopy Mode = iota
	RawBracketExtract
)

func (m Mode) String() string {
	if m == RawBracketExtract {
		return "raw_bracket_extract"
	}
	return "direct_copy"
}

// Instruction is one per-field step of the plan.
//
// RawBracketExtract is parameterized by the field's original name, not its
// resolved column name: the raw-text search runs against the untouched
// payload text, which knows nothing about collision renaming.
type Instruction struct {
	Field discover.FieldDescriptor
	Mode  Mode
}

// Plan is the ordered instruction sequence, matching the frozen schema's
// deterministic order.
type Plan struct {
	Instructions []Instruction
}

// Columns returns the resolved output column names in plan order.
func (p *Plan) Columns() []string {
	out := make([]string, 0, len(p.Instructions))
	for _, in := range p.Instructions {
		out = append(out, in.Field.Resolved)
	}
	return out
}

// Synthesize builds the plan for a resolved schema: one instruction per
// descriptor, in schema order.
func Synthesize(s *discover.Schema) *Plan {
	p := &Plan{Instructions: make([]Instruction, 0, len(s.Fields))}
	for _, f := range s.Fields {
		mode := DirectCopy
		if f.Class == payload.Complex {
			mode = RawBracketExtract
		}
		p.Instructions = append(p.Instructions, Instruction{Field: f, Mode: mode})
	}
	return p
}
