// Command fieldscan runs schema discovery only and prints the classified
// field list, without flattening anything.
//
// This is the quick way to see what columns a full flatten run would
// produce, and which of them need raw-text extraction, before committing
// to a run that may take hours on a large dataset under the exhaustive
// strategy. Output is tab-separated lines of original name,
// classification, and resolved column name, sorted by original name.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"auditflat/internal/config"
	"auditflat/internal/discover"
	"auditflat/internal/loader"
	"auditflat/internal/payload"
	"auditflat/internal/writer"
)

func main() {
	var (
		flagInput    = flag.String("input", "", "input file path (.csv, .txt, or .xml, optionally .gz)")
		flagStrategy = flag.String("strategy", "exhaustive", "discovery strategy: exhaustive|sampled")
		flagEncoding = flag.String("encoding", "", "input text encoding for delimited files (e.g. windows-1250)")
		flagOut      = flag.String("out", "", "write the field list to this path instead of stdout")
		verbose      = flag.Bool("v", false, "enable debug logs")
	)
	flag.Parse()

	if strings.TrimSpace(*flagInput) == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		flag.Usage()
		os.Exit(2)
	}

	log := newLogger(*verbose)
	defer log.Sync()

	strat, err := discover.ParseStrategy(*flagStrategy)
	if err != nil {
		fatalf("%v", err)
	}

	opts := config.Options{}
	if *flagEncoding != "" {
		opts["encoding"] = *flagEncoding
	}

	recs, err := loader.Load(*flagInput, opts)
	if err != nil {
		fatalf("load: %v", err)
	}

	schema, stats := discover.NewEngine(payload.NewDecoder(), log).Discover(recs, strat)
	discover.Resolve(schema)

	for _, ex := range stats.Exhausted {
		fmt.Fprintf(os.Stderr, "warning: %v\n", ex)
	}

	if *flagOut != "" {
		if err := writer.WriteFieldListFile(*flagOut, schema); err != nil {
			fatalf("%v", err)
		}
		return
	}
	if err := writer.WriteFieldList(os.Stdout, schema); err != nil {
		fatalf("write field list: %v", err)
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

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
