package payload

import "github.com/valyala/fastjson"

// Class tags a payload member by how it can be carried into a table cell.
type Class int

const (
	// Scalar members hold a string, number, bool, or null and can be copied
	// into a single cell directly.
	Scalar Class = iota

	// Complex members hold an array or nested object. They cannot be
	// assigned into one cell without loss and are recovered at execution
	// time as literal substrings of the original payload text.
	Complex
)

func (c Class) String() string {
	if c == Complex {
		return "complex"
	}
	return "scalar"
}

// Classify enumerates the document's top-level member names and tags each
// one. Inspection is one level deep only: nested structure is never
// decomposed further.
func Classify(doc *fastjson.Value) map[string]Class {
	obj, err := doc.Object()
	if err != nil {
		// Decode guarantees an object root; a non-object here means the
		// caller handed in a value it never got from Decode.
		return nil
	}

	out := make(map[string]Class, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		switch v.Type() {
		case fastjson.TypeArray, fastjson.TypeObject:
			out[string(key)] = Complex
		default:
			out[string(key)] = Scalar
		}
	})
	return out
}

// ScalarString renders a scalar member value as its cell text.
//
//   - strings are unquoted
//   - numbers keep their literal form
//   - booleans render as "true"/"false"
//   - null and absent members render as the empty cell
//
// The second return is false when the member is absent from the document.
func ScalarString(doc *fastjson.Value, name string) (string, bool) {
	v := doc.Get(name)
	if v == nil {
		return "", false
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes()), true
	case fastjson.TypeNull:
		return "", true
	case fastjson.TypeTrue:
		return "true", true
	case fastjson.TypeFalse:
		return "false", true
	default:
		// Numbers keep their literal form.
		return v.String(), true
	}
}
