// Package postgres implements the storage.Sink for PostgreSQL on pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auditflat/internal/storage"
)

type sink struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

// New connects a pgx pool and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &sink{pool: pool}, nil
}

func (s *sink) Close() { s.pool.Close() }

// EnsureTable creates the flattened table when absent. Every column is
// text; startup stays idempotent.
func (s *sink) EnsureTable(ctx context.Context, table string, columns []string) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(qualify(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(storage.QuoteIdent(c))
		b.WriteString(" text")
	}
	b.WriteString(")")

	if _, err := s.pool.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// InsertRows bulk-loads rows via COPY, which preserves order and is the
// cheapest path pgx offers for wide text tables.
func (s *sink) InsertRows(ctx context.Context, table string, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = v
		}
		src[i] = vals
	}

	n, err := s.pool.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(src))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

func qualify(table string) string {
	schema, name := storage.SplitQualified(table)
	if schema == "" {
		return storage.QuoteIdent(name)
	}
	return storage.QuoteIdent(schema) + "." + storage.QuoteIdent(name)
}

func identifier(table string) pgx.Identifier {
	schema, name := storage.SplitQualified(table)
	if schema == "" {
		return pgx.Identifier{name}
	}
	return pgx.Identifier{schema, name}
}
