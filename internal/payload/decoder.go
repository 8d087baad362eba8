// Package payload decodes the embedded JSON document carried by an audit
// record and classifies its top-level members.
//
// Decoding is per record and failure is always local: a malformed payload
// produces a DecodeError whose truncated text is stored on the record, and
// the batch moves on. Nothing in this package aborts a run.
package payload

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// MaxDiagnosticLen bounds the decode-failure text persisted per record.
// Parser errors commonly embed the failing payload in full, which is not
// useful to carry into the output table.
const MaxDiagnosticLen = 100

// DecodeError reports that a record's payload text could not be parsed
// into a document.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string { return e.Msg }

// Diagnostic returns the error text truncated to MaxDiagnosticLen, the
// form stored on the record's decode-failure field.
func (e *DecodeError) Diagnostic() string {
	return Truncate(e.Msg, MaxDiagnosticLen)
}

// Truncate cuts s to at most n bytes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Decoder parses payload text into fastjson documents. Parsers are pooled;
// the returned Value is only valid until the next Decode call that reuses
// the same pooled parser, so callers must finish inspecting a document
// before decoding the next one. The whole pipeline is sequential, which
// makes that contract trivial to honor.
type Decoder struct {
	pool fastjson.ParserPool
}

// NewDecoder returns a ready Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses raw payload text into a document value.
//
// The root must be a JSON object: records carry a single embedded document,
// and member enumeration is only defined for objects. A non-object root is
// reported as a DecodeError like any other malformed input.
func (d *Decoder) Decode(raw string) (*fastjson.Value, *DecodeError) {
	p := d.pool.Get()
	defer d.pool.Put(p)

	v, err := p.Parse(raw)
	if err != nil {
		return nil, &DecodeError{Msg: err.Error()}
	}
	if v.Type() != fastjson.TypeObject {
		return nil, &DecodeError{Msg: fmt.Sprintf("payload root is %s, want object", v.Type())}
	}
	return v, nil
}
