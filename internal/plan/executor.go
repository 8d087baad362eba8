package plan

import (
	"go.uber.org/zap"

	"auditflat/internal/payload"
	"auditflat/internal/record"
)

// ProgressFn receives periodic "processed done of total" notifications.
// It is purely observational and must not affect computed results.
type ProgressFn func(done, total int)

// Executor applies a finalized plan to the full record set.
type Executor struct {
	dec *payload.Decoder
	log *zap.Logger

	// Progress, when non-nil, is called every ProgressEvery records and
	// once more after the final record.
	Progress      ProgressFn
	ProgressEvery int
}

// NewExecutor returns an Executor. A nil logger is replaced with a nop
// logger.
func NewExecutor(dec *payload.Decoder, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{dec: dec, log: log}
}

// Execute produces exactly one FlattenedRow per record, preserving input
// order and count. Rows are never dropped: a record whose payload fails to
// decode gets its decode-failure field set to the truncated diagnostic and
// every planned cell left absent. A decodable record missing one of the
// planned fields gets an empty cell for it, not an error.
func (x *Executor) Execute(recs []*record.AuditRecord, p *Plan) []*record.FlattenedRow {
	rows := make([]*record.FlattenedRow, 0, len(recs))
	every := x.ProgressEvery
	if every <= 0 {
		every = 1000
	}

	failures := 0
	for i, r := range recs {
		rows = append(rows, x.executeOne(r, p, &failures))

		if x.Progress != nil && (i+1)%every == 0 {
			x.Progress(i+1, len(recs))
		}
	}
	if x.Progress != nil {
		x.Progress(len(recs), len(recs))
	}

	if failures > 0 {
		x.log.Warn("payloads failed to decode during execution",
			zap.Int("failures", failures),
			zap.Int("records", len(recs)))
	}
	return rows
}

func (x *Executor) executeOne(r *record.AuditRecord, p *Plan, failures *int) *record.FlattenedRow {
	row := &record.FlattenedRow{Record: r, Cells: make(map[string]string, len(p.Instructions))}

	doc, derr := x.dec.Decode(r.Payload)
	if derr != nil {
		r.DecodeFailure = derr.Diagnostic()
		*failures++
		return row
	}

	for _, in := range p.Instructions {
		switch in.Mode {
		case RawBracketExtract:
			if v, ok := ExtractRawBracket(r.Payload, in.Field.Name); ok {
				row.Cells[in.Field.Resolved] = v
			}
		default:
			if v, ok := payload.ScalarString(doc, in.Field.Name); ok {
				row.Cells[in.Field.Resolved] = v
			}
		}
	}
	return row
}
