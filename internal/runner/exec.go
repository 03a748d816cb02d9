package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/signalnine/benchduel/internal/measure"
)

// stderrLimit bounds how much of a tool's error output is kept.
const stderrLimit = 64 * 1024

// ExitCodeTimeout is reported when a run is killed at its deadline.
const ExitCodeTimeout = 124

type ExecResult struct {
	ExitCode     int
	Stderr       string
	PeakRSSBytes uint64
	TimedOut     bool
}

// Executor runs one command to completion. A non-zero exit is reported in
// ExecResult; the error return is reserved for commands that never ran.
type Executor interface {
	Execute(ctx context.Context, argv []string) (*ExecResult, error)
}

// ProcessExecutor runs commands as local child processes. Stdout is
// discarded and stderr is captured.
type ProcessExecutor struct {
	Dir string
	Env []string
}

func (p ProcessExecutor) Execute(ctx context.Context, argv []string) (*ExecResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.Dir
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}
	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	// npx leaves grandchildren holding the stderr pipe after a kill.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	res := &ExecResult{
		Stderr:       stderr.String(),
		PeakRSSBytes: measure.PeakRSS(cmd.ProcessState),
	}
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = ExitCodeTimeout
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("running %s: %w", argv[0], ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("starting %s: %w", argv[0], err)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
