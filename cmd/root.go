package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/benchduel/internal/config"
	"github.com/signalnine/benchduel/internal/runner"
)

type rootOptions struct {
	cfgFile  string
	logLevel string
	files    int

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	// executor overrides how tools run; nil picks per tool.
	executor func(config.Invocation) runner.Executor
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{stdout: os.Stdout, stderr: os.Stderr})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchduel",
		Short: "Compare two source transformation tools on the same synthetic corpus",
		Long: `benchduel generates a deterministic corpus of TypeScript/React files, runs
each configured tool over it one after another, measures duration and memory,
and prints a comparison. With no arguments it benchmarks Babel against SWC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return &ExitError{Code: ExitAborted, Err: err}
			}
			opts.logger = slog.New(slog.NewTextHandler(opts.stderr, &slog.HandlerOptions{
				Level: level,
			}))
			return nil
		},
	}
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file overlaid on the built-in defaults")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&opts.files, "files", 0, "number of corpus files to generate")

	addRunFlags(root, opts)
	root.AddCommand(newToolsCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newCleanCmd(opts))
	return root
}

// loadConfig builds the session config: defaults, then the --config file,
// then any flags set on the command line.
func loadConfig(cmd *cobra.Command, opts *rootOptions, overrides func(*config.Config)) (config.Config, error) {
	cfg := config.Defaults()
	if opts.cfgFile != "" {
		loaded, err := config.Load(opts.cfgFile)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	if cmd.Flags().Changed("files") {
		cfg.FileCount = opts.files
	}
	if overrides != nil {
		overrides(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
