// Package metrics is a minimal facade between the flattener and a metrics
// backend. The pipeline records counters through package functions; the
// command layer decides which backend (if any) receives them. With no
// backend configured, every call is a cheap no-op.
//
// Metrics are a side channel: they observe the run and never affect
// computed results.
package metrics

import "sync/atomic"

// Labels are free-form key/value tags attached to a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	Flush() error
}

// Counter names emitted by the pipeline.
const (
	RecordsTotal        = "auditflat.records_total"         // label stage: discovery|execute
	DecodeFailuresTotal = "auditflat.decode_failures_total" // label stage: discovery|execute
	RowsWrittenTotal    = "auditflat.rows_written_total"    // label sink: file|postgres|sqlite|mssql
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels) {}
func (nopBackend) Flush() error                       { return nil }

// backendBox gives atomic.Value a single concrete stored type regardless
// of the Backend implementation installed.
type backendBox struct{ b Backend }

var current atomic.Value

func init() {
	current.Store(backendBox{nopBackend{}})
}

// SetBackend installs the process-wide backend. Call once at startup.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	current.Store(backendBox{b})
}

// IncCounter adds delta to a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current.Load().(backendBox).b.IncCounter(name, delta, labels)
}

// Flush flushes the installed backend.
func Flush() error {
	return current.Load().(backendBox).b.Flush()
}
