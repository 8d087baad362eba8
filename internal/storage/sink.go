// Package storage loads the flattened table into a database instead of a
// delimited file. Backends register themselves under a kind string from an
// init() function; the command layer blank-imports storage/all to pull in
// every backend.
//
// The flattened table is a single wide table: fixed metadata columns plus
// the resolved payload columns, all stored as text. Payload-derived values
// are raw substrings or stringified scalars; typing them is the consumer's
// problem, not the flattener's.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Config selects and connects a sink backend.
type Config struct {
	// Kind must match a registered backend kind ("postgres", "sqlite",
	// "mssql").
	Kind string

	// DSN is passed through to the backend; validation is backend-specific.
	DSN string
}

// Sink is the minimal surface the flattener needs from a database backend.
type Sink interface {
	// Close releases connections. Call once at shutdown.
	Close()

	// EnsureTable creates the target table if it does not exist, with every
	// column typed as text.
	EnsureTable(ctx context.Context, table string, columns []string) error

	// InsertRows appends rows (aligned with columns) and returns the number
	// inserted. Row order is preserved.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]string) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a sink backend under a kind. Call from an init()
// function in the backend package.
//
// Panics on empty kind, nil factory, or duplicate registration; failing
// fast here beats ambiguous backend selection at run time.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Sink for the configured backend kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing sink kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported sink kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
// Postgres and SQLite share this form; mssql brackets instead.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SplitQualified splits an optionally schema-qualified table name into its
// schema (may be empty) and base name.
func SplitQualified(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}
