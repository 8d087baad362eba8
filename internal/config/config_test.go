package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadJSON verifies JSON configs decode, including the loosely-typed
// input options bag.
func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "run.json", `{
		"job": "nightly-audit",
		"input": {"path": "/data/audit.csv.gz", "options": {"comma": ";", "encoding": "windows-1250"}},
		"discovery": {"strategy": "sampled"},
		"output": {"kind": "postgres", "dsn": "postgres://localhost/audit", "table": "flat.audit"},
		"metrics": {"backend": "datadog", "tags": ["env:prod"]},
		"progress_every": 5000
	}`)

	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Job != "nightly-audit" || r.Input.Path != "/data/audit.csv.gz" {
		t.Fatalf("decoded run = %+v", r)
	}
	if r.Input.Options.Rune("comma", ',') != ';' {
		t.Fatalf("comma option = %q", r.Input.Options.Rune("comma", ','))
	}
	if r.Input.Options.String("encoding", "") != "windows-1250" {
		t.Fatalf("encoding option = %q", r.Input.Options.String("encoding", ""))
	}
	if r.Discovery.Strategy != "sampled" || r.Output.Kind != "postgres" || r.ProgressEvery != 5000 {
		t.Fatalf("decoded run = %+v", r)
	}
	if len(r.Metrics.Tags) != 1 || r.Metrics.Tags[0] != "env:prod" {
		t.Fatalf("metrics tags = %v", r.Metrics.Tags)
	}
}

// TestLoadYAML verifies YAML configs decode to the same structure.
func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "run.yaml", `
job: nightly-audit
input:
  path: /data/audit.xml
  options:
    trim_space: false
output:
  kind: file
  path: /out/audit_flat.csv
  list_separator: "|"
fields_path: /out/fields.tsv
`)

	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Input.Path != "/data/audit.xml" || r.Output.Path != "/out/audit_flat.csv" {
		t.Fatalf("decoded run = %+v", r)
	}
	if r.Input.Options.Bool("trim_space", true) {
		t.Fatalf("trim_space option not decoded")
	}
	if r.Output.ListSeparator != "|" || r.FieldsPath != "/out/fields.tsv" {
		t.Fatalf("decoded run = %+v", r)
	}
}

// TestLoadUnsupportedExtension verifies the extension gate.
func TestLoadUnsupportedExtension(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "run.toml", "job = 'x'")); err == nil {
		t.Fatalf("toml config accepted")
	}
}

// TestValidateRun exercises the blocking and advisory findings.
func TestValidateRun(t *testing.T) {
	t.Parallel()

	errorPaths := func(issues []Issue) map[string]bool {
		out := make(map[string]bool)
		for _, is := range issues {
			if is.Severity == SeverityError {
				out[is.Path] = true
			}
		}
		return out
	}

	tests := []struct {
		name       string
		run        Run
		wantErrors []string
	}{
		{
			name: "valid file run",
			run: Run{
				Input:  Input{Path: "in.csv"},
				Output: Output{Kind: "file", Path: "out.csv"},
			},
		},
		{
			name:       "missing everything",
			run:        Run{},
			wantErrors: []string{"input.path", "output.path"},
		},
		{
			name: "database output without dsn and table",
			run: Run{
				Input:  Input{Path: "in.csv"},
				Output: Output{Kind: "mssql"},
			},
			wantErrors: []string{"output.dsn", "output.table"},
		},
		{
			name: "unknown strategy and output kind",
			run: Run{
				Input:     Input{Path: "in.csv"},
				Discovery: Discovery{Strategy: "half"},
				Output:    Output{Kind: "s3"},
			},
			wantErrors: []string{"discovery.strategy", "output.kind"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := errorPaths(ValidateRun(tt.run))
			if len(got) != len(tt.wantErrors) {
				t.Fatalf("error paths = %v, want %v", got, tt.wantErrors)
			}
			for _, p := range tt.wantErrors {
				if !got[p] {
					t.Fatalf("missing expected error at %s; got %v", p, got)
				}
			}
		})
	}

	issues := ValidateRun(Run{
		Input:         Input{Path: "in.csv"},
		Output:        Output{Kind: "file", Path: "out.csv"},
		ProgressEvery: -1,
	})
	if len(issues) != 1 || issues[0].Severity != SeverityWarning || issues[0].Path != "progress_every" {
		t.Fatalf("issues = %+v, want one progress_every warning", issues)
	}
}
