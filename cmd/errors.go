package cmd

import (
	"context"
	"errors"

	"github.com/signalnine/benchduel/internal/runner"
	"github.com/signalnine/benchduel/internal/session"
)

// Process exit codes.
const (
	ExitOK                  = 0
	ExitPrerequisiteMissing = 1
	ExitAborted             = 2
	ExitToolFailed          = 3
	ExitInterrupted         = 130
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the root command to a process exit
// code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, runner.ErrPrerequisiteMissing):
		return ExitPrerequisiteMissing
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, session.ErrToolFailed):
		return ExitToolFailed
	default:
		return ExitAborted
	}
}
