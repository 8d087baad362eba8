// Package mssql implements the storage.Sink for Microsoft SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"auditflat/internal/storage"
)

type sink struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &sink{db: db}, nil
}

func (s *sink) Close() { _ = s.db.Close() }

// EnsureTable creates the flattened table when absent. SQL Server has no
// CREATE TABLE IF NOT EXISTS, so existence is checked via OBJECT_ID.
func (s *sink) EnsureTable(ctx context.Context, table string, columns []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (", strings.ReplaceAll(table, "'", "''"), bracketQualify(table))
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bracket(c))
		b.WriteString(" NVARCHAR(MAX)")
	}
	b.WriteString(")")

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// maxParams stays under SQL Server's 2100 bound-parameter limit.
const maxParams = 2000

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
		b.WriteString(bracketQualify(table))
		b.WriteString(" (")
		for i, c := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(bracket(c))
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
				fmt.Fprintf(&b, "@p%d", len(args)+1)
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

func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func bracketQualify(table string) string {
	schema, name := storage.SplitQualified(table)
	if schema == "" {
		return bracket(name)
	}
	return bracket(schema) + "." + bracket(name)
}
