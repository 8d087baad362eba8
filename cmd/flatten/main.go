// Command flatten converts a dataset of audit records into one flat table.
//
// The pipeline runs in two passes over the in-memory dataset:
//
//  1. Discovery: decode record payloads (all of them, or one representative
//     per operation type) and accumulate the global field schema.
//  2. Execution: apply the synthesized extraction plan to every record and
//     write one output row per input record, in input order.
//
// Input format is resolved from the file extension (.csv/.txt delimited,
// .xml object stream, optional .gz) before processing begins; an unknown
// extension is fatal. Output goes to a delimited file by default, or into a
// database table when the config selects a database sink.
//
// # Configuration
//
// A run is described by a JSON or YAML config file (-config). Individual
// fields can be overridden by flags, which win over the file.
//
// # DSN overrides
//
// Database sinks need a DSN. In real environments (Docker Compose, CI)
// operators usually want to point a run at an actual database without
// editing config files, so the DSN can be overridden with strict
// precedence:
//
//  1. -dsn flag
//  2. DSN env var (full DSN string)
//  3. DSN_HOST / DSN_PORT / DSN_USER / DSN_PASSWORD / DSN_DB component env
//     vars, plus backend knobs (Postgres: DSN_SSLMODE, MSSQL: DSN_ENCRYPT,
//     SQLite: DSN_SQLITE) and optional DSN_PARAMS query parameters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"auditflat/internal/config"
	"auditflat/internal/metrics"
	"auditflat/internal/metrics/datadog"

	// register all sink backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "auditflat/internal/storage/all"
)

func main() {
	var (
		cfgPath       = flag.String("config", "", "run config path (.json, .yaml, .yml)")
		flagInput     = flag.String("input", "", "input file path (overrides config)")
		flagOutput    = flag.String("output", "", "output file path (overrides config, file sink)")
		flagStrategy  = flag.String("strategy", "", "discovery strategy: exhaustive|sampled (overrides config)")
		flagSink      = flag.String("sink", "", "output kind: file|postgres|sqlite|mssql (overrides config)")
		flagTable     = flag.String("table", "", "target table for database sinks (overrides config)")
		flagDSN       = flag.String("dsn", "", "override sink DSN (highest priority)")
		flagFieldsOut = flag.String("fields-out", "", "write the discovered field list to this path (overrides config)")
		flagEvery     = flag.Int("progress-every", 0, "records between progress notifications (overrides config)")
		flagMetrics   = flag.String("metrics-backend", "", "metrics backend: none|datadog (overrides config)")
		flagValidate  = flag.Bool("validate", false, "validate the configuration and exit")
		verbose       = flag.Bool("v", false, "enable debug logs")
	)
	flag.Parse()

	log := newLogger(*verbose)
	defer log.Sync()

	cfg, err := loadRun(*cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Flags win over the config file.
	overrideString(&cfg.Input.Path, *flagInput)
	overrideString(&cfg.Output.Path, *flagOutput)
	overrideString(&cfg.Discovery.Strategy, *flagStrategy)
	overrideString(&cfg.Output.Kind, *flagSink)
	overrideString(&cfg.Output.Table, *flagTable)
	overrideString(&cfg.FieldsPath, *flagFieldsOut)
	overrideString(&cfg.Metrics.Backend, *flagMetrics)
	if *flagEvery > 0 {
		cfg.ProgressEvery = *flagEvery
	}

	// DSN override: -dsn wins, then DSN env, then DSN_* component envs.
	if dsn, ok, err := resolveDSNOverride(cfg.Output.Kind, strings.TrimSpace(*flagDSN)); err != nil {
		fatalf("dsn override: %v", err)
	} else if ok {
		cfg.Output.DSN = dsn
	}

	issues := config.ValidateRun(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid")
	}
	if *flagValidate {
		fmt.Fprintln(os.Stderr, "configuration is valid")
		return
	}

	setupMetrics(cfg, log)

	ctx := context.Background()
	start := time.Now()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}

	log.Info("completed", zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
}

// loadRun reads the config file when one is given; with no -config every
// setting comes from flags and defaults.
func loadRun(path string) (config.Run, error) {
	if strings.TrimSpace(path) == "" {
		return config.Run{}, nil
	}
	return config.Load(path)
}

// setupMetrics installs the configured metrics backend. Metrics failures
// never block the run; a broken backend degrades to the nop backend.
func setupMetrics(cfg config.Run, log *zap.Logger) {
	backend := cfg.Metrics.Backend
	if backend == "" {
		backend = os.Getenv("METRICS_BACKEND")
	}

	switch backend {
	case "datadog":
		jobName := cfg.Job
		if jobName == "" {
			jobName = "auditflat"
		}
		tags := cfg.Metrics.Tags
		if len(tags) == 0 {
			tags = datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))
		}

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: jobName,
			Tags:    tags,
		})
		if err != nil {
			log.Warn("metrics: datadog init failed; metrics disabled", zap.Error(err))
			return
		}
		log.Info("metrics: datadog backend enabled", zap.String("job", jobName), zap.Strings("tags", tags))
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", backend))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fatalf("init logger: %v", err)
	}
	return log
}

func overrideString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
