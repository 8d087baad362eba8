// Package loader reads audit-record datasets into memory.
//
// Two source formats are supported, resolved from the file extension before
// any processing begins: delimited text (.csv, .txt) and an XML-serialized
// object stream (.xml). Either may additionally carry a trailing .gz for
// gzip-compressed input. An unrecognized extension is fatal: no partial
// processing is possible without knowing the input shape.
//
// The whole dataset is materialized at once. Discovery and execution are
// two independent passes over the same in-memory collection, so the design
// trades memory for simplicity.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"auditflat/internal/config"
	"auditflat/internal/record"
)

// UnsupportedFormatError reports an input file whose format cannot be
// resolved from its extension.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported input format %q for %s (want .csv, .txt, or .xml, optionally .gz)", e.Ext, e.Path)
}

// Load reads the full dataset from path, in input order.
func Load(path string, opts config.Options) ([]*record.AuditRecord, error) {
	name := path
	gzipped := false
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		gzipped = true
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".txt", ".xml":
	default:
		return nil, &UnsupportedFormatError{Path: path, Ext: ext}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip input: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	if ext == ".xml" {
		return readXMLStream(r)
	}

	if enc := opts.String("encoding", ""); enc != "" {
		e, err := resolveEncoding(enc)
		if err != nil {
			return nil, err
		}
		r = transform.NewReader(r, e.NewDecoder())
	}
	return readDelimited(r, opts)
}

// resolveEncoding maps a config encoding name onto a charmap decoder.
// Legacy exports from the source system commonly arrive in central-European
// single-byte encodings rather than UTF-8.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-2", "latin-2":
		return charmap.ISO8859_2, nil
	default:
		return nil, fmt.Errorf("unsupported input encoding %q", name)
	}
}
