package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/signalnine/benchduel/internal/observe"
	"github.com/signalnine/benchduel/internal/session"
)

func newCleanCmd(opts *rootOptions) *cobra.Command {
	var pruneContainers bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the corpus, tool output directories and generated config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return &ExitError{Code: ExitAborted, Err: err}
			}
			console := observe.NewConsole(cmd.ErrOrStderr(), opts.logger)
			removed, err := session.RemoveArtifacts(cfg.Artifacts(), console)
			for _, p := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", p)
			}
			if err != nil {
				return &ExitError{Code: ExitAborted, Err: err}
			}
			if pruneContainers {
				cleanupDocker(opts)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pruneContainers, "docker", false, "also prune stopped benchduel containers")
	return cmd
}

func cleanupDocker(opts *rootOptions) {
	// Best-effort; containers are normally removed after each run.
	opts.logger.Info("pruning benchduel containers")
	c := newExecCmd("docker", "container", "prune", "-f", "--filter", "label=benchduel=true")
	if out, err := c.CombinedOutput(); err != nil {
		opts.logger.Warn("docker prune failed", "error", err, "output", string(out))
	}
}

func newExecCmd(args ...string) *exec.Cmd {
	return exec.Command(args[0], args[1:]...)
}
