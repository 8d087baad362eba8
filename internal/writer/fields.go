package writer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"auditflat/internal/discover"
)

// WriteFieldList writes the discovered schema as tab-separated lines of
// original name, classification, and resolved column name, in schema order.
// This is a debugging artifact; nothing downstream consumes it.
func WriteFieldList(w io.Writer, s *discover.Schema) error {
	bw := bufio.NewWriter(w)
	for _, f := range s.Fields {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", f.Name, f.Class, f.Resolved); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFieldListFile writes the field list to path.
func WriteFieldListFile(path string, s *discover.Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create field list: %w", err)
	}
	if err := WriteFieldList(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write field list: %w", err)
	}
	return f.Close()
}
