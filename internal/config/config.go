package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

type Config struct {
	FileCount             int        `yaml:"file_count"`
	CorpusDir             string     `yaml:"corpus_dir"`
	FileExt               string     `yaml:"file_ext"`
	Tools                 []ToolSpec `yaml:"tools"`
	SampleIntervalSeconds int        `yaml:"sample_interval_seconds"`
	ToolTimeoutMinutes    int        `yaml:"tool_timeout_minutes"`
	RunsPerDay            int        `yaml:"runs_per_day"`
	FailFast              bool       `yaml:"fail_fast"`
	Format                string     `yaml:"format"`
}

type ToolSpec struct {
	Name           string            `yaml:"name"`
	Label          string            `yaml:"label"`
	Command        []string          `yaml:"command"`
	VersionCommand []string          `yaml:"version_command"`
	ConfigFile     string            `yaml:"config_file"`
	Settings       map[string]any    `yaml:"settings"`
	OutputDir      string            `yaml:"output_dir"`
	Env            map[string]string `yaml:"env"`
	Image          string            `yaml:"image"`
	InstallHint    string            `yaml:"install_hint"`

	// CPULimit and MemoryLimitMB only apply to tools run in a container.
	CPULimit      float64 `yaml:"cpu_limit"`
	MemoryLimitMB int64   `yaml:"memory_limit_mb"`
}

// Invocation is the fully resolved form of a ToolSpec for one run.
type Invocation struct {
	Tool           string
	Label          string
	Argv           []string
	ConfigPath     string
	ConfigContents []byte
	OutputDir      string
	// Env holds KEY=VALUE pairs added to the tool's environment, sorted.
	Env            []string
	Image          string
	CPULimit       float64
	MemoryLimitMB  int64
	FilesProcessed int
}

const npmInstallHint = "npm install --save-dev @babel/cli @babel/core @babel/preset-env @babel/preset-react " +
	"@babel/preset-typescript @babel/plugin-transform-class-properties @babel/plugin-transform-runtime " +
	"@swc/cli @swc/core"

// Defaults returns the Babel vs SWC setup over a 10,000 file corpus.
func Defaults() Config {
	return Config{
		FileCount:             10000,
		CorpusDir:             "./benchmark_files",
		FileExt:               ".tsx",
		SampleIntervalSeconds: 5,
		RunsPerDay:            10,
		Format:                "table",
		Tools: []ToolSpec{
			{
				Name:  "babel",
				Label: "Babel (JavaScript)",
				Command: []string{
					"npx", "babel", InputPlaceholder,
					"--out-dir", OutputPlaceholder,
					"--extensions", ".tsx,.ts",
					"--source-maps",
				},
				VersionCommand: []string{"npx", "babel", "--version"},
				ConfigFile:     "./babel.config.json",
				Settings: map[string]any{
					"presets": []any{
						"@babel/preset-env",
						"@babel/preset-react",
						"@babel/preset-typescript",
					},
					"plugins": []any{
						"@babel/plugin-transform-class-properties",
						"@babel/plugin-transform-runtime",
					},
				},
				OutputDir:   "./babel_output",
				InstallHint: npmInstallHint,
			},
			{
				Name:  "swc",
				Label: "SWC (Rust)",
				Command: []string{
					"npx", "swc", InputPlaceholder,
					"-d", OutputPlaceholder,
					"--source-maps",
				},
				VersionCommand: []string{"npx", "swc", "--version"},
				ConfigFile:     "./.swcrc",
				Settings: map[string]any{
					"jsc": map[string]any{
						"parser": map[string]any{
							"syntax":        "typescript",
							"tsx":           true,
							"decorators":    false,
							"dynamicImport": false,
						},
						"transform": map[string]any{
							"react": map[string]any{
								"pragma":           "React.createElement",
								"pragmaFrag":       "React.Fragment",
								"throwIfNamespace": true,
								"development":      false,
								"useBuiltins":      false,
							},
						},
						"target": "es2018",
					},
					"module":     map[string]any{"type": "commonjs"},
					"sourceMaps": true,
				},
				OutputDir:   "./swc_output",
				InstallHint: npmInstallHint,
			},
		},
	}
}

// Load overlays the YAML file at path onto Defaults. Keys absent from the
// file keep their default values; a non-empty tools list replaces the
// default tools entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Defaults()
	defaultTools := cfg.Tools
	cfg.Tools = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Tools) == 0 {
		cfg.Tools = defaultTools
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.FileCount < 1 {
		return fmt.Errorf("file_count must be at least 1")
	}
	if strings.TrimSpace(c.CorpusDir) == "" {
		return fmt.Errorf("corpus_dir is required")
	}
	if c.FileExt == "" {
		c.FileExt = ".tsx"
	}
	if !strings.HasPrefix(c.FileExt, ".") {
		c.FileExt = "." + c.FileExt
	}
	if c.SampleIntervalSeconds < 0 {
		return fmt.Errorf("sample_interval_seconds must not be negative")
	}
	if c.ToolTimeoutMinutes < 0 {
		return fmt.Errorf("tool_timeout_minutes must not be negative")
	}
	if c.RunsPerDay < 1 {
		return fmt.Errorf("runs_per_day must be at least 1")
	}
	switch c.Format {
	case "":
		c.Format = "table"
	case "table", "markdown", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if len(c.Tools) < 2 {
		return fmt.Errorf("at least two tools are required for a comparison")
	}

	claimed := []claim{{path: c.CorpusDir, owner: "corpus_dir"}}
	names := map[string]bool{}
	for i := range c.Tools {
		t := &c.Tools[i]
		if t.Name == "" {
			return fmt.Errorf("tool %d: name is required", i)
		}
		if names[t.Name] {
			return fmt.Errorf("tool %q: duplicate name", t.Name)
		}
		names[t.Name] = true
		if t.Label == "" {
			t.Label = t.Name
		}
		if len(t.Command) == 0 {
			return fmt.Errorf("tool %q: command is required", t.Name)
		}
		if !containsToken(t.Command, InputPlaceholder) || !containsToken(t.Command, OutputPlaceholder) {
			return fmt.Errorf("tool %q: command must reference %s and %s", t.Name, InputPlaceholder, OutputPlaceholder)
		}
		if len(t.VersionCommand) == 0 {
			return fmt.Errorf("tool %q: version_command is required", t.Name)
		}
		if t.OutputDir == "" {
			return fmt.Errorf("tool %q: output_dir is required", t.Name)
		}
		if t.ConfigFile == "" {
			return fmt.Errorf("tool %q: config_file is required", t.Name)
		}
		if t.CPULimit < 0 {
			return fmt.Errorf("tool %q: cpu_limit must not be negative", t.Name)
		}
		if t.MemoryLimitMB < 0 {
			return fmt.Errorf("tool %q: memory_limit_mb must not be negative", t.Name)
		}
		claimed = append(claimed,
			claim{path: t.OutputDir, owner: "tool " + t.Name + " output_dir"},
			claim{path: t.ConfigFile, owner: "tool " + t.Name + " config_file"},
		)
	}
	return checkOverlap(claimed)
}

type claim struct {
	path  string
	owner string
}

// checkOverlap rejects any two claimed paths where one is the other or
// contains it. Recreating an output directory removes everything below it,
// so nesting would let one artifact destroy or grow another.
func checkOverlap(claimed []claim) error {
	abs := make([]string, len(claimed))
	for i, c := range claimed {
		p, err := filepath.Abs(c.path)
		if err != nil {
			return fmt.Errorf("%s: resolving %s: %w", c.owner, c.path, err)
		}
		abs[i] = p
	}
	for i := range claimed {
		for j := i + 1; j < len(claimed); j++ {
			if nested(abs[i], abs[j]) || nested(abs[j], abs[i]) {
				return fmt.Errorf("%s %s overlaps %s %s", claimed[j].owner, claimed[j].path, claimed[i].owner, claimed[i].path)
			}
		}
	}
	return nil
}

// nested reports whether path is dir or lies below it.
func nested(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalSeconds) * time.Second
}

func (c Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutMinutes) * time.Minute
}

// Artifacts lists every path a session creates, corpus first.
func (c Config) Artifacts() []string {
	paths := []string{c.CorpusDir}
	for _, t := range c.Tools {
		paths = append(paths, t.OutputDir, t.ConfigFile)
	}
	return paths
}

// Invocation resolves placeholders and renders the tool's settings in its
// native config format. The returned value shares no memory with t.
func (t ToolSpec) Invocation(corpusDir string, fileCount int) (Invocation, error) {
	argv := make([]string, len(t.Command))
	for i, tok := range t.Command {
		tok = strings.ReplaceAll(tok, InputPlaceholder, corpusDir)
		argv[i] = strings.ReplaceAll(tok, OutputPlaceholder, t.OutputDir)
	}
	contents, err := RenderSettings(t.ConfigFile, t.Settings)
	if err != nil {
		return Invocation{}, fmt.Errorf("tool %q: %w", t.Name, err)
	}
	return Invocation{
		Tool:           t.Name,
		Label:          t.Label,
		Argv:           argv,
		ConfigPath:     t.ConfigFile,
		ConfigContents: contents,
		OutputDir:      t.OutputDir,
		Env:            t.Environ(),
		Image:          t.Image,
		CPULimit:       t.CPULimit,
		MemoryLimitMB:  t.MemoryLimitMB,
		FilesProcessed: fileCount,
	}, nil
}

// Environ returns Env as sorted KEY=VALUE pairs.
func (t ToolSpec) Environ() []string {
	env := make([]string, 0, len(t.Env))
	for k, v := range t.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// RenderSettings encodes settings as YAML for .yaml/.yml files and as
// indented JSON otherwise (.json, .swcrc, .babelrc).
func RenderSettings(path string, settings map[string]any) ([]byte, error) {
	if settings == nil {
		settings = map[string]any{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml settings: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json settings: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func containsToken(argv []string, placeholder string) bool {
	for _, tok := range argv {
		if strings.Contains(tok, placeholder) {
			return true
		}
	}
	return false
}
