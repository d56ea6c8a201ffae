// Package runner executes units of work as local subprocesses with a
// bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/qecbench/montesweep/internal/sweep"
)

// Output is one subprocess's captured outcome.
type Output struct {
	Stdout   string
	ExitCode int
	Duration time.Duration
}

// ExecutionFailure reports a unit that exited nonzero. The simulator owns
// its own time budget, so a nonzero exit is a genuine failure, not a
// timeout of ours.
type ExecutionFailure struct {
	Command  string
	ExitCode int
	Tail     string
}

func (e *ExecutionFailure) Error() string {
	msg := fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	if e.Tail != "" {
		msg += "\n" + e.Tail
	}
	return msg
}

// Run executes one unit to completion, capturing combined output. On a
// nonzero exit the Output is still returned alongside an
// *ExecutionFailure so callers can record what happened.
func Run(ctx context.Context, u sweep.Unit) (*Output, error) {
	cmd := exec.CommandContext(ctx, u.Argv[0], u.Argv[1:]...)
	start := time.Now()
	combined, err := cmd.CombinedOutput()
	out := &Output{
		Stdout:   string(combined),
		Duration: time.Since(start),
	}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("running %s: %w", u.Argv[0], err)
		}
		out.ExitCode = exitErr.ExitCode()
		return out, &ExecutionFailure{
			Command:  strings.Join(u.Argv, " "),
			ExitCode: out.ExitCode,
			Tail:     tail(out.Stdout, 5),
		}
	}
	return out, nil
}

// Workers sizes the local pool. A configured value wins; otherwise the
// pool takes all CPUs minus a small reservation so the controlling
// process is not starved. Never below 1.
func Workers(configured, reserved int) int {
	if configured > 0 {
		return configured
	}
	n := runtime.NumCPU() - reserved
	if n < 1 {
		n = 1
	}
	return n
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
