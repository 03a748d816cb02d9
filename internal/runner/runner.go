package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalnine/benchduel/internal/config"
	"github.com/signalnine/benchduel/internal/measure"
	"github.com/signalnine/benchduel/internal/observe"
	"github.com/signalnine/benchduel/internal/result"
)

const (
	ReasonCompleted  = "completed"
	ReasonFailed     = "failed"
	ReasonKilled     = "killed"
	ReasonTimeout    = "timeout"
	ReasonNotStarted = "not_started"
	ReasonSkipped    = "skipped"
)

func ExitReasonFromCode(code int, timedOut bool) string {
	if timedOut {
		return ReasonTimeout
	}
	switch {
	case code == 0:
		return ReasonCompleted
	case code < 0:
		return ReasonKilled
	default:
		return ReasonFailed
	}
}

// InvocationError is returned when a tool could not be started or exited
// unsuccessfully.
type InvocationError struct {
	Tool     string
	ExitCode int
	Reason   string
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tool %s %s", e.Tool, e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr: %s", s)
	}
	return b.String()
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Runner benchmarks one tool invocation at a time.
type Runner struct {
	// Select picks the executor for an invocation; nil runs every tool as a
	// local process.
	Select         func(inv config.Invocation) Executor
	Observer       observe.Observer
	SampleInterval time.Duration
	// Timeout kills the tool after the given duration; zero waits forever.
	Timeout time.Duration
}

func (r *Runner) executor(inv config.Invocation) Executor {
	if r.Select != nil {
		if e := r.Select(inv); e != nil {
			return e
		}
	}
	return ProcessExecutor{}
}

func (r *Runner) observer() observe.Observer {
	if r.Observer == nil {
		return observe.Nop{}
	}
	return r.Observer
}

// Run prepares the tool's config file and output directory, executes it and
// measures the run. No result is returned unless the tool exits with 0.
func (r *Runner) Run(ctx context.Context, inv config.Invocation) (*result.BenchmarkResult, error) {
	obs := r.observer()

	if err := writeConfigFile(inv.ConfigPath, inv.ConfigContents); err != nil {
		return nil, &InvocationError{Tool: inv.Tool, Reason: ReasonNotStarted, Err: err}
	}
	if err := resetDir(inv.OutputDir); err != nil {
		return nil, &InvocationError{Tool: inv.Tool, Reason: ReasonNotStarted, Err: err}
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	obs.ToolStarted(inv.Tool, inv.Argv)
	startMem := measure.Sample()
	start := time.Now()

	stop := startSampler(runCtx, r.SampleInterval, func(elapsed time.Duration) {
		obs.ToolSampled(inv.Tool, elapsed, measure.Sample())
	})
	res, err := r.executor(inv).Execute(runCtx, inv.Argv)
	elapsed := time.Since(start)
	endMem := measure.Sample()
	samples := stop()

	if err != nil {
		reason := ReasonNotStarted
		if runCtx.Err() != nil {
			reason = ReasonKilled
		}
		return nil, &InvocationError{Tool: inv.Tool, ExitCode: -1, Reason: reason, Err: err}
	}
	if res.ExitCode != 0 || res.TimedOut {
		return nil, &InvocationError{
			Tool:     inv.Tool,
			ExitCode: res.ExitCode,
			Reason:   ExitReasonFromCode(res.ExitCode, res.TimedOut),
			Stderr:   res.Stderr,
		}
	}

	delta := endMem.HeapUsed - startMem.HeapUsed

	return &result.BenchmarkResult{
		Tool:           inv.Tool,
		Label:          inv.Label,
		DurationMillis: elapsed.Milliseconds(),
		FilesProcessed: inv.FilesProcessed,
		StartMemory:    startMem,
		EndMemory:      endMem,
		MemoryDelta:    delta,
		GCExpected:     delta < 0 || measure.GCBetween(startMem, endMem),
		PeakRSSMB:      measure.ToMB(res.PeakRSSBytes),
		Samples:        samples,
	}, nil
}

func writeConfigFile(path string, contents []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing output dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	return nil
}
