// Package writer serializes the flattened row set to a delimited file with
// a header row, and writes the discovered-field side artifact.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"auditflat/internal/record"
)

// WriteTable writes the header row followed by one line per flattened row,
// preserving row order. payloadColumns must be the resolved payload-derived
// column names in their final (alphabetical) order; the fixed metadata
// columns always come first.
func WriteTable(w io.Writer, payloadColumns []string, rows []*record.FlattenedRow, listSep string) error {
	cw := csv.NewWriter(w)

	header := append(record.MetadataColumns(), payloadColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, 0, len(header))
	for i, fr := range rows {
		line = line[:0]
		line = append(line, fr.Record.MetadataValues(listSep)...)
		for _, col := range payloadColumns {
			line = append(line, fr.Cell(col))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes the flattened table to path, creating or
// truncating it. The file is complete or absent: on write error the
// partial file is removed rather than left behind.
func WriteTableFile(path string, payloadColumns []string, rows []*record.FlattenedRow, listSep string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := WriteTable(f, payloadColumns, rows, listSep); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
