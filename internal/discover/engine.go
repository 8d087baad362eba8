package discover

import (
	"fmt"

	"go.uber.org/zap"

	"auditflat/internal/payload"
	"auditflat/internal/record"
)

// Strategy selects how the engine reads the dataset.
type Strategy int

const (
	// Exhaustive decodes every record.
	Exhaustive Strategy = iota

	// SampledByOperation decodes one representative record per distinct
	// operation-type label.
	SampledByOperation
)

func (s Strategy) String() string {
	if s == SampledByOperation {
		return "sampled"
	}
	return "exhaustive"
}

// ParseStrategy maps a user-facing strategy name onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "exhaustive", "":
		return Exhaustive, nil
	case "sampled":
		return SampledByOperation, nil
	default:
		return Exhaustive, fmt.Errorf("unknown discovery strategy %q (want exhaustive or sampled)", s)
	}
}

// SampleExhaustionError reports that every candidate record for one
// operation type failed to decode under the sampled strategy. The type
// contributes no fields; the run continues with the remaining types.
type SampleExhaustionError struct {
	Operation  string
	Candidates int
}

func (e *SampleExhaustionError) Error() string {
	return fmt.Sprintf("operation %q: all %d candidate payloads failed to decode", e.Operation, e.Candidates)
}

// Stats summarizes one discovery pass. Purely observational.
type Stats struct {
	// RecordsDecoded counts successful payload decodes during discovery.
	RecordsDecoded int

	// DecodeFailures counts payloads skipped because they failed to decode.
	// Discovery never retries and never records the failure on the record;
	// that happens during execution.
	DecodeFailures int

	// Exhausted lists the operation types that contributed no fields under
	// the sampled strategy.
	Exhausted []*SampleExhaustionError
}

// Engine drives the decoder and classifier across the dataset.
type Engine struct {
	dec *payload.Decoder
	log *zap.Logger
}

// NewEngine returns an Engine. A nil logger is replaced with a nop logger.
func NewEngine(dec *payload.Decoder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{dec: dec, log: log}
}

// Discover runs one discovery pass and returns the frozen, sorted schema.
// Resolved column names are not assigned here; call Resolve on the result.
func (e *Engine) Discover(recs []*record.AuditRecord, strat Strategy) (*Schema, Stats) {
	if strat == SampledByOperation {
		return e.discoverSampled(recs)
	}
	return e.discoverExhaustive(recs)
}

func (e *Engine) discoverExhaustive(recs []*record.AuditRecord) (*Schema, Stats) {
	acc := newAccumulator()
	var st Stats

	for _, r := range recs {
		doc, derr := e.dec.Decode(r.Payload)
		if derr != nil {
			st.DecodeFailures++
			continue
		}
		st.RecordsDecoded++
		acc.merge(payload.Classify(doc))
	}

	e.log.Info("discovery complete",
		zap.String("strategy", "exhaustive"),
		zap.Int("records", len(recs)),
		zap.Int("decoded", st.RecordsDecoded),
		zap.Int("decode_failures", st.DecodeFailures))
	return acc.freeze(), st
}

func (e *Engine) discoverSampled(recs []*record.AuditRecord) (*Schema, Stats) {
	acc := newAccumulator()
	var st Stats

	for _, op := range distinctOperations(recs) {
		// The candidate list lives only for this iteration so peak memory
		// stays bounded by the largest single operation type.
		candidates := recordsForOperation(recs, op)

		sampled := false
		for _, r := range candidates {
			doc, derr := e.dec.Decode(r.Payload)
			if derr != nil {
				st.DecodeFailures++
				continue
			}
			st.RecordsDecoded++
			acc.merge(payload.Classify(doc))
			sampled = true
			break
		}

		if !sampled {
			ex := &SampleExhaustionError{Operation: op, Candidates: len(candidates)}
			st.Exhausted = append(st.Exhausted, ex)
			e.log.Warn("sample exhausted", zap.String("operation", op), zap.Int("candidates", len(candidates)))
			continue
		}

		if len(candidates) > 1 {
			// Shape-per-operation homogeneity is assumed, not checked:
			// fields unique to the uninspected records are silently absent
			// from the schema. Surface that trade-off per type.
			e.log.Info("operation sampled from one record; fields unique to its other records may be missed",
				zap.String("operation", op),
				zap.Int("records_not_inspected", len(candidates)-1))
		}
	}

	e.log.Info("discovery complete",
		zap.String("strategy", "sampled"),
		zap.Int("records", len(recs)),
		zap.Int("decoded", st.RecordsDecoded),
		zap.Int("decode_failures", st.DecodeFailures),
		zap.Int("exhausted_operations", len(st.Exhausted)))
	return acc.freeze(), st
}

// distinctOperations returns the distinct operation labels in first-seen
// order. Order does not affect the frozen schema (it is sorted), but stable
// iteration keeps diagnostics deterministic.
func distinctOperations(recs []*record.AuditRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range recs {
		if _, ok := seen[r.Operation]; ok {
			continue
		}
		seen[r.Operation] = struct{}{}
		out = append(out, r.Operation)
	}
	return out
}

func recordsForOperation(recs []*record.AuditRecord, op string) []*record.AuditRecord {
	var out []*record.AuditRecord
	for _, r := range recs {
		if r.Operation == op {
			out = append(out, r)
		}
	}
	return out
}
