package loader

import (
	"encoding/xml"
	"fmt"
	"io"

	"auditflat/internal/record"
)

// xmlRecord mirrors one serialized audit entry. The payload arrives as the
// element's character data (CDATA or escaped), carried through verbatim.
type xmlRecord struct {
	CreatedAt   string   `xml:"CreatedAt"`
	Identity    string   `xml:"Identity"`
	Operation   string   `xml:"Operation"`
	RecordType  string   `xml:"RecordType"`
	ResultCount string   `xml:"ResultCount"`
	ResultIndex string   `xml:"ResultIndex"`
	UserIDs     []string `xml:"UserIds>UserId"`
	Payload     string   `xml:"Payload"`
}

// readXMLStream reads an XML-serialized object stream: a single document
// whose root wraps a sequence of record elements. Record elements are
// decoded one at a time off the token stream rather than materializing the
// whole document tree.
func readXMLStream(r io.Reader) ([]*record.AuditRecord, error) {
	dec := xml.NewDecoder(r)

	var out []*record.AuditRecord
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read xml token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				// Root wrapper element; its name is not significant.
				depth++
				continue
			}

			var xr xmlRecord
			if err := dec.DecodeElement(&xr, &t); err != nil {
				return nil, fmt.Errorf("decode record element <%s>: %w", t.Name.Local, err)
			}
			out = append(out, &record.AuditRecord{
				CreatedAt:   xr.CreatedAt,
				Identity:    xr.Identity,
				Operation:   xr.Operation,
				RecordType:  xr.RecordType,
				ResultCount: xr.ResultCount,
				ResultIndex: xr.ResultIndex,
				UserIDs:     xr.UserIDs,
				Payload:     xr.Payload,
			})

		case xml.EndElement:
			depth--
		}
	}
}
