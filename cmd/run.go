package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/signalnine/benchduel/internal/config"
	"github.com/signalnine/benchduel/internal/observe"
	"github.com/signalnine/benchduel/internal/session"
)

type runFlags struct {
	format         string
	runsPerDay     int
	sampleInterval int
	timeout        int
	failFast       bool
}

func addRunFlags(root *cobra.Command, opts *rootOptions) {
	var f runFlags
	root.Flags().StringVar(&f.format, "format", "table", "report format (table, markdown, json)")
	root.Flags().IntVar(&f.runsPerDay, "runs-per-day", 0, "builds per day used for the savings projection")
	root.Flags().IntVar(&f.sampleInterval, "sample-interval", 0, "seconds between memory samples while a tool runs (0 disables)")
	root.Flags().IntVar(&f.timeout, "timeout", 0, "minutes before a tool run is killed (0 waits forever)")
	root.Flags().BoolVar(&f.failFast, "fail-fast", false, "stop at the first failing tool")

	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, opts, func(c *config.Config) {
			flags := cmd.Flags()
			if flags.Changed("format") {
				c.Format = f.format
			}
			if flags.Changed("runs-per-day") {
				c.RunsPerDay = f.runsPerDay
			}
			if flags.Changed("sample-interval") {
				c.SampleIntervalSeconds = f.sampleInterval
			}
			if flags.Changed("timeout") {
				c.ToolTimeoutMinutes = f.timeout
			}
			if flags.Changed("fail-fast") {
				c.FailFast = f.failFast
			}
		})
		if err != nil {
			return &ExitError{Code: ExitAborted, Err: err}
		}
		return runSession(cmd, opts, cfg)
	}
}

func runSession(cmd *cobra.Command, opts *rootOptions, cfg config.Config) error {
	id := uuid.NewString()
	logger := opts.logger.With("session", id)
	logger.Info("starting benchmark",
		"files", cfg.FileCount,
		"corpus", cfg.CorpusDir,
		"tools", len(cfg.Tools),
	)

	s := session.New(cfg, session.Deps{
		Observer:  observe.NewConsole(cmd.ErrOrStderr(), logger),
		Executor:  opts.executor,
		Out:       cmd.OutOrStdout(),
		SessionID: id,
	})
	sum, err := s.Run(cmd.Context())
	logger.Info("benchmark finished", "state", sum.State)
	if err != nil {
		return err
	}
	if failed := sum.FailedTools(); len(failed) > 0 {
		return &ExitError{
			Code: ExitToolFailed,
			Err:  fmt.Errorf("%d of %d tools failed: %s", len(failed), len(cfg.Tools), strings.Join(failed, ", ")),
		}
	}
	return nil
}
