// Package config defines the run configuration for the flattener and its
// validation. Configs are plain files, JSON or YAML, selected by extension;
// CLI flags override individual fields at the command layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Run is one flattening job.
type Run struct {
	// Job is the logical job name used in logs and metric tags.
	Job string `json:"job" yaml:"job"`

	Input     Input     `json:"input" yaml:"input"`
	Discovery Discovery `json:"discovery" yaml:"discovery"`
	Output    Output    `json:"output" yaml:"output"`
	Metrics   Metrics   `json:"metrics" yaml:"metrics"`

	// FieldsPath, when set, is where the discovered field list (name and
	// classification) is written as a debugging artifact. Nothing consumes
	// it downstream.
	FieldsPath string `json:"fields_path" yaml:"fields_path"`

	// ProgressEvery is the record interval between progress notifications.
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`
}

// Input describes the source file.
type Input struct {
	// Path to the source file. Format is resolved from the extension:
	// .csv/.txt delimited text, .xml object stream, with an optional
	// trailing .gz for gzip-compressed input.
	Path string `json:"path" yaml:"path"`

	// Options tune the delimited reader: "comma" (single rune, default
	// ','), "trim_space" (default true), "list_separator" (default ";"),
	// "encoding" (windows-1250, windows-1252, iso-8859-2; default UTF-8).
	Options Options `json:"options" yaml:"options"`
}

// Discovery selects the schema-discovery strategy.
type Discovery struct {
	// Strategy is "exhaustive" (default) or "sampled".
	Strategy string `json:"strategy" yaml:"strategy"`
}

// Output describes where the flattened table goes.
type Output struct {
	// Kind is "file" (default), "postgres", "sqlite", or "mssql".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the delimited output file (file kind only).
	Path string `json:"path" yaml:"path"`

	// DSN and Table configure the database sinks.
	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`

	// ListSeparator joins the user-identifier list into one cell.
	// Defaults to ";".
	ListSeparator string `json:"list_separator" yaml:"list_separator"`
}

// Metrics configures the optional metrics backend.
type Metrics struct {
	// Backend is "none" (default) or "datadog".
	Backend string `json:"backend" yaml:"backend"`

	// Tags are extra backend tags, e.g. ["env:prod"].
	Tags []string `json:"tags" yaml:"tags"`
}

// Load reads a Run from path. JSON and YAML are supported, selected by
// extension (.json vs .yaml/.yml).
func Load(path string) (Run, error) {
	var r Run

	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &r); err != nil {
			return r, fmt.Errorf("decode config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &r); err != nil {
			return r, fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return r, fmt.Errorf("config %s: unsupported extension (want .json, .yaml, or .yml)", path)
	}
	return r, nil
}

// Severity levels for validation issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity string
	Path     string
	Message  string
}

// ValidateRun checks a Run for problems the pipeline would otherwise hit
// mid-flight. Errors block the run; warnings do not.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	add := func(sev, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	if strings.TrimSpace(r.Input.Path) == "" {
		add(SeverityError, "input.path", "missing input path")
	}

	switch r.Discovery.Strategy {
	case "", "exhaustive", "sampled":
	default:
		add(SeverityError, "discovery.strategy",
			fmt.Sprintf("unknown strategy %q (want exhaustive or sampled)", r.Discovery.Strategy))
	}

	switch r.Output.Kind {
	case "", "file":
		if strings.TrimSpace(r.Output.Path) == "" {
			add(SeverityError, "output.path", "missing output path for file output")
		}
	case "postgres", "sqlite", "mssql":
		if strings.TrimSpace(r.Output.DSN) == "" {
			add(SeverityError, "output.dsn", "missing DSN for database output")
		}
		if strings.TrimSpace(r.Output.Table) == "" {
			add(SeverityError, "output.table", "missing table name for database output")
		}
	default:
		add(SeverityError, "output.kind",
			fmt.Sprintf("unknown output kind %q (want file, postgres, sqlite, or mssql)", r.Output.Kind))
	}

	if r.ProgressEvery < 0 {
		add(SeverityWarning, "progress_every", "negative interval; default will be used")
	}

	return issues
}
