package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/benchduel/internal/config"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchduel.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.FileCount != 10000 {
		t.Errorf("file count: got %d, want 10000", cfg.FileCount)
	}
	if len(cfg.Tools) != 2 || cfg.Tools[0].Name != "babel" || cfg.Tools[1].Name != "swc" {
		t.Errorf("unexpected default tools: %+v", cfg.Tools)
	}
	if cfg.SampleInterval() != 5*time.Second {
		t.Errorf("sample interval: got %v", cfg.SampleInterval())
	}
	if cfg.ToolTimeout() != 0 {
		t.Errorf("default timeout should be disabled, got %v", cfg.ToolTimeout())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "file_count: 50\nruns_per_day: 3\nfail_fast: true\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FileCount != 50 {
		t.Errorf("file count: got %d, want 50", cfg.FileCount)
	}
	if cfg.RunsPerDay != 3 {
		t.Errorf("runs per day: got %d, want 3", cfg.RunsPerDay)
	}
	if !cfg.FailFast {
		t.Error("expected fail_fast to be set")
	}
	if cfg.CorpusDir != "./benchmark_files" {
		t.Errorf("corpus dir should keep default, got %q", cfg.CorpusDir)
	}
	if len(cfg.Tools) != 2 {
		t.Errorf("expected default tools, got %d", len(cfg.Tools))
	}
}

func TestLoadReplacesTools(t *testing.T) {
	path := writeConfig(t, `
tools:
  - name: esbuild
    command: [esbuild, "{input}/*.tsx", "--outdir={output}"]
    version_command: [esbuild, --version]
    config_file: esbuild.yaml
    output_dir: esbuild_output
    settings:
      target: es2018
  - name: tsc
    command: [tsc, --rootDir, "{input}", --outDir, "{output}"]
    version_command: [tsc, --version]
    config_file: tsconfig.json
    output_dir: tsc_output
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Tools) != 2 || cfg.Tools[0].Name != "esbuild" {
		t.Fatalf("unexpected tools: %+v", cfg.Tools)
	}
	if cfg.Tools[0].Label != "esbuild" {
		t.Errorf("label should default to name, got %q", cfg.Tools[0].Label)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := config.Load("nonexistent.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "file_count: [")
	if _, err := config.Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero files", func(c *config.Config) { c.FileCount = 0 }, "file_count"},
		{"empty corpus", func(c *config.Config) { c.CorpusDir = " " }, "corpus_dir"},
		{"negative interval", func(c *config.Config) { c.SampleIntervalSeconds = -1 }, "sample_interval"},
		{"negative timeout", func(c *config.Config) { c.ToolTimeoutMinutes = -1 }, "tool_timeout"},
		{"zero runs", func(c *config.Config) { c.RunsPerDay = 0 }, "runs_per_day"},
		{"bad format", func(c *config.Config) { c.Format = "xml" }, "format"},
		{"one tool", func(c *config.Config) { c.Tools = c.Tools[:1] }, "two tools"},
		{"duplicate name", func(c *config.Config) { c.Tools[1].Name = "babel" }, "duplicate"},
		{"missing placeholder", func(c *config.Config) { c.Tools[0].Command = []string{"npx", "babel"} }, "must reference"},
		{"missing version", func(c *config.Config) { c.Tools[0].VersionCommand = nil }, "version_command"},
		{"shared output", func(c *config.Config) { c.Tools[1].OutputDir = "babel_output" }, "overlaps"},
		{"output is corpus", func(c *config.Config) { c.Tools[0].OutputDir = "benchmark_files" }, "overlaps"},
		{"output contains corpus", func(c *config.Config) {
			c.CorpusDir = "work/corpus"
			c.Tools[0].OutputDir = "work"
		}, "overlaps"},
		{"output inside corpus", func(c *config.Config) { c.Tools[1].OutputDir = "benchmark_files/swc" }, "overlaps"},
		{"output inside other output", func(c *config.Config) { c.Tools[1].OutputDir = "./babel_output/nested" }, "overlaps"},
		{"config inside output", func(c *config.Config) { c.Tools[0].ConfigFile = "babel_output/babel.config.json" }, "overlaps"},
		{"corpus is working dir", func(c *config.Config) { c.CorpusDir = "." }, "overlaps"},
		{"negative cpu", func(c *config.Config) { c.Tools[0].CPULimit = -1 }, "cpu_limit"},
		{"negative memory", func(c *config.Config) { c.Tools[0].MemoryLimitMB = -1 }, "memory_limit_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAllowsSiblingPrefixes(t *testing.T) {
	cfg := config.Defaults()
	cfg.CorpusDir = "out"
	cfg.Tools[0].OutputDir = "out_babel"
	cfg.Tools[1].OutputDir = "outswc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("paths sharing a name prefix are not nested: %v", err)
	}
}

func TestValidateNormalizesExt(t *testing.T) {
	cfg := config.Defaults()
	cfg.FileExt = "ts"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.FileExt != ".ts" {
		t.Errorf("ext: got %q, want .ts", cfg.FileExt)
	}
}

func TestInvocationResolvesPlaceholders(t *testing.T) {
	cfg := config.Defaults()
	inv, err := cfg.Tools[1].Invocation("./corpus", 42)
	if err != nil {
		t.Fatalf("Invocation: %v", err)
	}
	want := []string{"npx", "swc", "./corpus", "-d", "./swc_output", "--source-maps"}
	if strings.Join(inv.Argv, " ") != strings.Join(want, " ") {
		t.Errorf("argv: got %v, want %v", inv.Argv, want)
	}
	if inv.FilesProcessed != 42 {
		t.Errorf("files: got %d, want 42", inv.FilesProcessed)
	}
	var doc map[string]any
	if err := json.Unmarshal(inv.ConfigContents, &doc); err != nil {
		t.Fatalf(".swcrc is not JSON: %v", err)
	}
	if doc["sourceMaps"] != true {
		t.Errorf("expected sourceMaps enabled, got %v", doc["sourceMaps"])
	}

	inv.Argv[0] = "mutated"
	if cfg.Tools[1].Command[0] != "npx" {
		t.Error("invocation argv aliases the tool command")
	}
}

func TestInvocationCarriesEnvAndLimits(t *testing.T) {
	spec := config.Defaults().Tools[0]
	spec.Env = map[string]string{"NODE_OPTIONS": "--max-old-space-size=4096", "BABEL_ENV": "production"}
	spec.Image = "benchduel/transpilers"
	spec.CPULimit = 2
	spec.MemoryLimitMB = 2048

	inv, err := spec.Invocation("./corpus", 1)
	if err != nil {
		t.Fatalf("Invocation: %v", err)
	}
	want := []string{"BABEL_ENV=production", "NODE_OPTIONS=--max-old-space-size=4096"}
	if strings.Join(inv.Env, " ") != strings.Join(want, " ") {
		t.Errorf("env: got %v, want %v", inv.Env, want)
	}
	if inv.CPULimit != 2 || inv.MemoryLimitMB != 2048 || inv.Image != "benchduel/transpilers" {
		t.Errorf("container settings not carried: %+v", inv)
	}
}

func TestRenderSettingsYAML(t *testing.T) {
	data, err := config.RenderSettings("tool.yml", map[string]any{"target": "es2018"})
	if err != nil {
		t.Fatalf("RenderSettings: %v", err)
	}
	var doc map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("not yaml: %v", err)
	}
	if doc["target"] != "es2018" {
		t.Errorf("target: got %q", doc["target"])
	}
}

func TestArtifacts(t *testing.T) {
	cfg := config.Defaults()
	got := cfg.Artifacts()
	want := []string{"./benchmark_files", "./babel_output", "./babel.config.json", "./swc_output", "./.swcrc"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("artifacts: got %v, want %v", got, want)
	}
}
