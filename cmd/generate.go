package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/benchduel/internal/config"
	"github.com/signalnine/benchduel/internal/corpus"
	"github.com/signalnine/benchduel/internal/observe"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic corpus and leave it on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, func(c *config.Config) {
				if dir != "" {
					c.CorpusDir = dir
				}
			})
			if err != nil {
				return &ExitError{Code: ExitAborted, Err: err}
			}
			console := observe.NewConsole(cmd.ErrOrStderr(), opts.logger)
			c, err := corpus.Generate(cmd.Context(), corpus.Options{
				FileCount: cfg.FileCount,
				Dir:       cfg.CorpusDir,
				Ext:       cfg.FileExt,
				Progress:  console.CorpusProgress,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d files in %s\n", len(c.Files), c.Dir)
			for i, n := range c.TemplateCounts {
				fmt.Fprintf(cmd.OutOrStdout(), "  template %d: %d files\n", i, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (defaults to the configured corpus_dir)")
	return cmd
}
