// Package session drives one benchmark from tool verification through
// cleanup.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalnine/benchduel/internal/compare"
	"github.com/signalnine/benchduel/internal/config"
	"github.com/signalnine/benchduel/internal/corpus"
	"github.com/signalnine/benchduel/internal/docker"
	"github.com/signalnine/benchduel/internal/observe"
	"github.com/signalnine/benchduel/internal/report"
	"github.com/signalnine/benchduel/internal/result"
	"github.com/signalnine/benchduel/internal/runner"
)

type State string

const (
	Idle                  State = "idle"
	ToolsVerified         State = "tools_verified"
	CorpusGenerated       State = "corpus_generated"
	FirstToolBenchmarked  State = "first_tool_benchmarked"
	SecondToolBenchmarked State = "second_tool_benchmarked"
	Reported              State = "reported"
	CleanedUp             State = "cleaned_up"
	Done                  State = "done"
	Aborted               State = "aborted"
)

// ToolBenchmarked names the state reached after the n-th tool (1-based).
func ToolBenchmarked(n int) State {
	switch n {
	case 1:
		return FirstToolBenchmarked
	case 2:
		return SecondToolBenchmarked
	default:
		return State(fmt.Sprintf("tool_benchmarked(%d)", n))
	}
}

// ErrToolFailed is returned when FailFast stops a session at the first
// failing tool.
var ErrToolFailed = errors.New("benchmark tool failed")

type Deps struct {
	Observer observe.Observer
	// Executor picks how each tool runs. Nil uses DefaultExecutor for the
	// current working directory.
	Executor func(inv config.Invocation) runner.Executor
	// Out receives the rendered report; nil discards it.
	Out       io.Writer
	SessionID string
	// Templates overrides the corpus templates.
	Templates []corpus.Template
}

type Summary struct {
	SessionID   string
	State       State
	Outcomes    []result.Outcome
	Comparisons []compare.Entry
	Report      *report.Report
}

// FailedTools lists the tools that ran but produced no result.
func (s *Summary) FailedTools() []string {
	var failed []string
	for _, o := range s.Outcomes {
		if !o.Succeeded() && o.ExitReason != runner.ReasonSkipped {
			failed = append(failed, o.Tool)
		}
	}
	return failed
}

type Session struct {
	cfg     config.Config
	deps    Deps
	obs     observe.Observer
	state   State
	cleaned bool
}

func New(cfg config.Config, deps Deps) *Session {
	obs := deps.Observer
	if obs == nil {
		obs = observe.Nop{}
	}
	if deps.Executor == nil {
		wd, _ := os.Getwd()
		deps.Executor = DefaultExecutor(wd)
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Session{cfg: cfg, deps: deps, obs: obs, state: Idle}
}

// DefaultExecutor runs tools with an image in a Docker container rooted at
// workDir and every other tool as a local process. Tool environment applies
// to both; resource limits only to containers.
func DefaultExecutor(workDir string) func(config.Invocation) runner.Executor {
	return func(inv config.Invocation) runner.Executor {
		if inv.Image != "" {
			return &docker.Executor{
				Image:       inv.Image,
				WorkDir:     workDir,
				Env:         inv.Env,
				CPULimit:    inv.CPULimit,
				MemoryLimit: inv.MemoryLimitMB * 1024 * 1024,
			}
		}
		return runner.ProcessExecutor{Env: inv.Env}
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	s.obs.StateChanged(string(from), string(to))
}

// Run executes the whole session. Cleanup runs on every path before Run
// returns. A tool failure is recorded in the summary and the remaining tools
// still run unless the config asks to fail fast. The returned summary is
// never nil.
func (s *Session) Run(ctx context.Context) (sum *Summary, err error) {
	sum = &Summary{SessionID: s.deps.SessionID}
	defer func() {
		s.Cleanup()
		if err != nil {
			s.transition(Aborted)
		} else {
			s.transition(Done)
		}
		sum.State = s.state
	}()

	if err := s.verify(ctx); err != nil {
		return sum, err
	}
	s.transition(ToolsVerified)

	if _, err := corpus.Generate(ctx, corpus.Options{
		FileCount: s.cfg.FileCount,
		Dir:       s.cfg.CorpusDir,
		Ext:       s.cfg.FileExt,
		Templates: s.deps.Templates,
		Progress:  s.obs.CorpusProgress,
	}); err != nil {
		return sum, err
	}
	s.transition(CorpusGenerated)

	r := &runner.Runner{
		Select:         s.deps.Executor,
		Observer:       s.obs,
		SampleInterval: s.cfg.SampleInterval(),
		Timeout:        s.cfg.ToolTimeout(),
	}
	var runErr error
	for i, tool := range s.cfg.Tools {
		if runErr != nil {
			sum.Outcomes = append(sum.Outcomes, result.Outcome{Tool: tool.Name, Label: tool.Label, ExitReason: runner.ReasonSkipped})
			continue
		}
		outcome, err := s.benchmark(ctx, r, tool)
		sum.Outcomes = append(sum.Outcomes, outcome)
		s.transition(ToolBenchmarked(i + 1))
		switch {
		case ctx.Err() != nil:
			runErr = ctx.Err()
		case err != nil && s.cfg.FailFast:
			runErr = fmt.Errorf("%w: %w", ErrToolFailed, err)
		}
	}

	sum.Comparisons = compare.CompareAll(sum.Outcomes, compare.Options{RunsPerDay: s.cfg.RunsPerDay})
	sum.Report = &report.Report{
		SessionID:   s.deps.SessionID,
		GeneratedAt: time.Now().UTC(),
		FileCount:   s.cfg.FileCount,
		CorpusDir:   s.cfg.CorpusDir,
		Outcomes:    sum.Outcomes,
		Comparisons: sum.Comparisons,
	}
	if err := report.Generate(s.deps.Out, s.cfg.Format, sum.Report); err != nil {
		return sum, fmt.Errorf("writing report: %w", err)
	}
	s.transition(Reported)
	return sum, runErr
}

func (s *Session) verify(ctx context.Context) error {
	probes := make([]runner.Probe, len(s.cfg.Tools))
	for i, t := range s.cfg.Tools {
		probes[i] = runner.Probe{
			Tool:        t.Name,
			Argv:        t.VersionCommand,
			Exec:        s.deps.Executor(probeInvocation(t)),
			InstallHint: t.InstallHint,
		}
	}
	return runner.Verify(ctx, probes)
}

// probeInvocation carries what an executor needs to run a version command
// the same way the tool itself will run.
func probeInvocation(t config.ToolSpec) config.Invocation {
	return config.Invocation{
		Tool:          t.Name,
		Label:         t.Label,
		Argv:          t.VersionCommand,
		Env:           t.Environ(),
		Image:         t.Image,
		CPULimit:      t.CPULimit,
		MemoryLimitMB: t.MemoryLimitMB,
	}
}

func (s *Session) benchmark(ctx context.Context, r *runner.Runner, tool config.ToolSpec) (result.Outcome, error) {
	outcome := result.Outcome{Tool: tool.Name, Label: tool.Label}
	inv, err := tool.Invocation(s.cfg.CorpusDir, s.cfg.FileCount)
	if err == nil {
		var res *result.BenchmarkResult
		res, err = r.Run(ctx, inv)
		if err == nil {
			outcome.Result = res
			outcome.ExitReason = runner.ReasonCompleted
			s.obs.ToolFinished(res)
			return outcome, nil
		}
	}

	outcome.ExitReason = runner.ReasonNotStarted
	var invErr *runner.InvocationError
	if errors.As(err, &invErr) {
		outcome.ExitReason = invErr.Reason
	}
	outcome.Error = err.Error()
	s.obs.ToolFailed(tool.Name, err)
	return outcome, err
}

// Cleanup removes the corpus, every tool output directory and every
// generated config file. Calling it again is a no-op.
func (s *Session) Cleanup() {
	if s.cleaned {
		return
	}
	s.cleaned = true
	RemoveArtifacts(s.cfg.Artifacts(), s.obs)
	s.transition(CleanedUp)
}

// RemoveArtifacts deletes each path and returns the ones that existed.
// Paths that are already gone are not errors; other failures are reported
// to obs and returned joined.
func RemoveArtifacts(paths []string, obs observe.Observer) ([]string, error) {
	if obs == nil {
		obs = observe.Nop{}
	}
	var removed []string
	var errs []error
	for _, p := range paths {
		if _, err := os.Lstat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			obs.CleanupFailed(p, err)
			errs = append(errs, fmt.Errorf("removing %s: %w", p, err))
			continue
		}
		removed = append(removed, p)
	}
	return removed, errors.Join(errs...)
}
