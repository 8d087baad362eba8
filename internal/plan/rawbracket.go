package plan

import "strings"

// Bracket-close candidates searched after the key-opening sequence. The
// comma form covers an array followed by a sibling field; the brace form
// covers an array that is the last field before the document closes.
const (
	bracketCloseComma = `],"`
	bracketCloseEnd   = `]}`
)

// ExtractRawBracket recovers the literal text of an array-valued member
// from the record's raw payload.
//
// It searches for the key-opening sequence "<name>":[ and then, from one
// past the match, for a closing sequence: a comma-terminated array close
// when one occurs, falling back to an end-of-object close.
// The returned value is the untouched substring of raw covering the
// member's full key-value pair, including the trailing comma or closing
// brace that terminated the search.
//
// The second return is false when the key-opening sequence does not occur,
// meaning the field is simply not present in this record, or when neither
// closing sequence occurs after it.
//
// This is a heuristic two-candidate scan, not a balanced-bracket parser.
// It is correct for flat arrays of scalars and arrays of flat objects; an
// array whose nested structure itself contains one of the closing
// sequences before the true close is cut short at the nested occurrence.
func ExtractRawBracket(raw, name string) (string, bool) {
	s := strings.Index(raw, `"`+name+`":[`)
	if s < 0 {
		return "", false
	}

	end := -1
	if i := strings.Index(raw[s+1:], bracketCloseComma); i >= 0 {
		// Include the ']' and the ',' that follows it.
		end = s + 1 + i + 1
	}
	if end <= s {
		if i := strings.Index(raw[s+1:], bracketCloseEnd); i >= 0 {
			// Include the ']' and the '}' that follows it.
			end = s + 1 + i + 1
		}
	}
	if end <= s {
		return "", false
	}
	return raw[s : end+1], true
}
