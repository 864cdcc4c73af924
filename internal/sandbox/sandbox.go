// Package sandbox runs learner-submitted Python and captures its output.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single run.
const DefaultTimeout = 5 * time.Second

// TimeoutMessage replaces stderr when a run is cut short.
const TimeoutMessage = "Execution timed out."

// Result is the captured output of one run. A non-zero exit is reported
// through Stderr and ExitCode, not as an error.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Runner executes a code snippet.
type Runner interface {
	Run(ctx context.Context, code string) (Result, error)
}

// PythonRunner runs snippets with `<interpreter> -c`.
type PythonRunner struct {
	Interpreter string
	Timeout     time.Duration
}

// NewPythonRunner returns a runner using PYTUTOR_PYTHON, or python3 when
// unset, with DefaultTimeout.
func NewPythonRunner() *PythonRunner {
	interp := os.Getenv("PYTUTOR_PYTHON")
	if interp == "" {
		interp = "python3"
	}
	return &PythonRunner{Interpreter: interp, Timeout: DefaultTimeout}
}

// Run executes code. It returns an error only when the interpreter could
// not be started or ctx was cancelled by the caller.
func (r *PythonRunner) Run(ctx context.Context, code string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.Interpreter, "-c", code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{Stdout: stdout.String(), Stderr: TimeoutMessage, ExitCode: -1, TimedOut: true}, nil
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return Result{}, fmt.Errorf("run %s: %w", r.Interpreter, err)
	}
	return res, nil
}
