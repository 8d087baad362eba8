// Package sqlite implements the storage.Sink for SQLite via modernc.org's
// pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"auditflat/internal/storage"
)

type sink struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &sink{db: db}, nil
}

func (s *sink) Close() { _ = s.db.Close() }

func (s *sink) EnsureTable(ctx context.Context, table string, columns []string) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(storage.QuoteIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(storage.QuoteIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// maxParams stays under SQLite's historical 999 bound-parameter limit.
const maxParams = 999

// InsertRows appends rows inside one transaction, batching multi-row
// VALUES so the parameter count stays under the driver limit.
func (s *sink) InsertRows(ctx context.Context, table string, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	perBatch := maxParams / len(columns)
	if perBatch < 1 {
		perBatch = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(rows); start += perBatch {
		end := start + perBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var b strings.Builder
		b.WriteString("INSERT INTO ")
		b.WriteString(storage.QuoteIdent(table))
		b.WriteString(" (")
		for i, c := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(storage.QuoteIdent(c))
		}
		b.WriteString(") VALUES ")

		args := make([]any, 0, len(batch)*len(columns))
		for i, r := range batch {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(")
			for j := range columns {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString("?")
				args = append(args, r[j])
			}
			b.WriteString(")")
		}

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return total, fmt.Errorf("insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return total, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}
