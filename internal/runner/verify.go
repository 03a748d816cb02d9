package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrPrerequisiteMissing = errors.New("prerequisite tool missing")

// Probe checks that one tool can be invoked at all, usually by asking it
// for its version.
type Probe struct {
	Tool        string
	Argv        []string
	Exec        Executor
	InstallHint string
}

// Verify runs every probe and fails with ErrPrerequisiteMissing if any of
// them cannot be started or exits non-zero. The error lists each missing
// tool followed by the distinct install hints. Probes that fail because ctx
// was cancelled yield the context error, never a missing tool.
func Verify(ctx context.Context, probes []Probe) error {
	jobs := make([]Job, len(probes))
	for i, p := range probes {
		jobs[i] = func() error {
			exec := p.Exec
			if exec == nil {
				exec = ProcessExecutor{}
			}
			res, err := exec.Execute(ctx, p.Argv)
			if err != nil {
				return err
			}
			if res.ExitCode != 0 {
				return &InvocationError{
					Tool:     p.Tool,
					ExitCode: res.ExitCode,
					Reason:   ExitReasonFromCode(res.ExitCode, res.TimedOut),
				}
			}
			return nil
		}
	}
	errs := RunPool(len(jobs), jobs)

	var missing, hints []string
	seen := map[string]bool{}
	for i, err := range errs {
		if err == nil {
			continue
		}
		missing = append(missing, fmt.Sprintf("  %s (%s): %v", probes[i].Tool, strings.Join(probes[i].Argv, " "), err))
		if h := probes[i].InstallHint; h != "" && !seen[h] {
			seen[h] = true
			hints = append(hints, h)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("verifying tools: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.Join(missing, "\n"))
	if len(hints) > 0 {
		b.WriteString("\ninstall the missing tools with:")
		for _, h := range hints {
			b.WriteString("\n  " + h)
		}
	}
	return fmt.Errorf("%w:\n%s", ErrPrerequisiteMissing, b.String())
}
