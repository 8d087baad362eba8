package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"auditflat/internal/config"
	"auditflat/internal/record"
)

// readDelimited reads a header-mapped delimited file into audit records.
//
// The header row is matched against the fixed metadata column names after
// lowercasing and replacing spaces with underscores, so "Created At" and
// "created_at" both bind. Columns that match nothing are ignored; metadata
// columns missing from the header load as empty values.
func readDelimited(r io.Reader, opts config.Options) ([]*record.AuditRecord, error) {
	comma := opts.Rune("comma", ',')
	trim := opts.Bool("trim_space", true)
	listSep := opts.String("list_separator", ";")

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		colIdx[h] = i
	}

	field := func(row []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		v := row[i]
		if trim {
			v = strings.TrimSpace(v)
		}
		return v
	}

	var out []*record.AuditRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		rec := &record.AuditRecord{
			CreatedAt:   field(row, record.ColCreatedAt),
			Identity:    field(row, record.ColIdentity),
			Operation:   field(row, record.ColOperation),
			RecordType:  field(row, record.ColRecordType),
			ResultCount: field(row, record.ColResultCount),
			ResultIndex: field(row, record.ColResultIndex),
			UserIDs:     splitList(field(row, record.ColUserIDs), listSep),
			Payload:     field(row, record.ColPayload),
		}
		out = append(out, rec)
	}
}

func splitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
