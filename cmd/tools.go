package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the configured tools and their commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return &ExitError{Code: ExitAborted, Err: err}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Corpus: %d %s files in %s\n", cfg.FileCount, cfg.FileExt, cfg.CorpusDir)
			fmt.Fprintln(w, "\nTools:")
			for _, t := range cfg.Tools {
				where := "local"
				if t.Image != "" {
					where = "image: " + t.Image
				}
				fmt.Fprintf(w, "  - %s [%s] (%s)\n", t.Name, t.Label, where)
				fmt.Fprintf(w, "      command: %s\n", strings.Join(t.Command, " "))
				fmt.Fprintf(w, "      version: %s\n", strings.Join(t.VersionCommand, " "))
				fmt.Fprintf(w, "      config:  %s\n", t.ConfigFile)
				fmt.Fprintf(w, "      output:  %s\n", t.OutputDir)
			}
			return nil
		},
	}
}
