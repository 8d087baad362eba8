package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"auditflat/internal/config"
	"auditflat/internal/discover"
	"auditflat/internal/loader"
	"auditflat/internal/metrics"
	"auditflat/internal/payload"
	"auditflat/internal/plan"
	"auditflat/internal/record"
	"auditflat/internal/storage"
	"auditflat/internal/writer"
)

// run executes one flattening job end to end: load, discover, resolve,
// synthesize, execute, write. The run either produces a complete output
// table or fails before any output exists; there is no partial-output
// state.
func run(ctx context.Context, cfg config.Run, log *zap.Logger) error {
	recs, err := loader.Load(cfg.Input.Path, cfg.Input.Options)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", zap.String("path", cfg.Input.Path), zap.Int("records", len(recs)))

	strat, err := discover.ParseStrategy(cfg.Discovery.Strategy)
	if err != nil {
		return err
	}

	dec := payload.NewDecoder()
	schema, stats := discover.NewEngine(dec, log).Discover(recs, strat)
	metrics.IncCounter(metrics.RecordsTotal, float64(stats.RecordsDecoded), metrics.Labels{"stage": "discovery"})
	metrics.IncCounter(metrics.DecodeFailuresTotal, float64(stats.DecodeFailures), metrics.Labels{"stage": "discovery"})

	discover.Resolve(schema)
	log.Info("schema frozen", zap.Int("fields", len(schema.Fields)), zap.String("strategy", strat.String()))

	if cfg.FieldsPath != "" {
		if err := writer.WriteFieldListFile(cfg.FieldsPath, schema); err != nil {
			return err
		}
	}

	p := plan.Synthesize(schema)

	ex := plan.NewExecutor(dec, log)
	ex.ProgressEvery = cfg.ProgressEvery
	ex.Progress = func(done, total int) {
		log.Info("progress", zap.Int("processed", done), zap.Int("total", total))
	}
	rows := ex.Execute(recs, p)

	failures := 0
	for _, r := range recs {
		if r.DecodeFailure != "" {
			failures++
		}
	}
	metrics.IncCounter(metrics.RecordsTotal, float64(len(rows)), metrics.Labels{"stage": "execute"})
	metrics.IncCounter(metrics.DecodeFailuresTotal, float64(failures), metrics.Labels{"stage": "execute"})

	listSep := cfg.Output.ListSeparator
	if listSep == "" {
		listSep = ";"
	}

	kind := cfg.Output.Kind
	if kind == "" {
		kind = "file"
	}

	if kind == "file" {
		if err := writer.WriteTableFile(cfg.Output.Path, p.Columns(), rows, listSep); err != nil {
			return err
		}
		metrics.IncCounter(metrics.RowsWrittenTotal, float64(len(rows)), metrics.Labels{"sink": "file"})
		log.Info("table written", zap.String("path", cfg.Output.Path), zap.Int("rows", len(rows)))
		return flushMetrics(log)
	}

	if err := writeToSink(ctx, cfg, kind, p, rows, listSep, log); err != nil {
		return err
	}
	return flushMetrics(log)
}

// writeToSink loads the flattened table into a database backend.
func writeToSink(ctx context.Context, cfg config.Run, kind string, p *plan.Plan, rows []*record.FlattenedRow, listSep string, log *zap.Logger) error {
	sink, err := storage.New(ctx, storage.Config{Kind: kind, DSN: cfg.Output.DSN})
	if err != nil {
		return err
	}
	defer sink.Close()

	columns := append(record.MetadataColumns(), p.Columns()...)
	if err := sink.EnsureTable(ctx, cfg.Output.Table, columns); err != nil {
		return err
	}

	values := make([][]string, 0, len(rows))
	for _, fr := range rows {
		line := make([]string, 0, len(columns))
		line = append(line, fr.Record.MetadataValues(listSep)...)
		for _, in := range p.Instructions {
			line = append(line, fr.Cell(in.Field.Resolved))
		}
		values = append(values, line)
	}

	n, err := sink.InsertRows(ctx, cfg.Output.Table, columns, values)
	if err != nil {
		return fmt.Errorf("load %s sink: %w", kind, err)
	}
	metrics.IncCounter(metrics.RowsWrittenTotal, float64(n), metrics.Labels{"sink": kind})
	log.Info("table loaded", zap.String("sink", kind), zap.String("table", cfg.Output.Table), zap.Int64("rows", n))
	return nil
}

func flushMetrics(log *zap.Logger) error {
	if err := metrics.Flush(); err != nil {
		// Metrics are observational; a failed flush never fails the run.
		log.Warn("metrics flush failed", zap.Error(err))
	}
	return nil
}
