// Package toolexec invokes the external geometry programs foamgen
// orchestrates (binvox, foamreconstr, neper, gmsh, ...). It owns the
// process-level concerns: working directory, output capture, timeouts
// and typed failures. Callers never parse geometry formats here; they
// get raw stdout back and extract the scalar metrics they need.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/foamgen/foamgen/pkg/logger"
)

// ErrToolNotFound indicates the external program is not on PATH.
var ErrToolNotFound = errors.New("toolexec: tool not found in PATH")

// ToolError describes a failed external tool invocation.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("toolexec: %s timed out", e.Tool)
	}
	return fmt.Sprintf("toolexec: %s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Runner executes external tools in a fixed working directory with a
// shared timeout policy. The zero value runs in the process working
// directory with no timeout.
type Runner struct {
	Dir     string
	Timeout time.Duration
}

// NewRunner creates a runner rooted at dir with the given per-call
// timeout. A zero timeout disables the deadline.
func NewRunner(dir string, timeout time.Duration) *Runner {
	return &Runner{Dir: dir, Timeout: timeout}
}

// Run invokes the tool and returns its captured stdout. A non-zero
// exit, a missing binary, or an expired deadline all surface as a
// *ToolError; a deadline expiry is marked TimedOut so callers can
// treat it like any other tool failure.
func (r *Runner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, tool)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, tool, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	logger.Debug("external tool finished", "tool", tool, "elapsed", elapsed, "error", err)

	if err != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		terr := &ToolError{
			Tool:     tool,
			Args:     args,
			ExitCode: exitCode,
			TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
			Stderr:   stderr.String(),
			Err:      err,
		}
		return stdout.Bytes(), terr
	}
	return stdout.Bytes(), nil
}
