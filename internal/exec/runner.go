// Package exec provides an interface for running external commands.
package exec

import (
	"context"
	"os/exec"
	"time"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows the sandbox and analyzer services to be
// exercised with fakes in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// LookPath reports whether the named binary is available.
	LookPath(name string) bool
}

// Runner implements CommandRunner using os/exec.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes a command and returns combined stdout/stderr output.
func (r *Runner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	return cmd.CombinedOutput()
}

// LookPath reports whether the named binary is available in PATH.
func (r *Runner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// RunWithTimeout runs a command through the given runner with a hard
// deadline. A deadline of zero runs without a timeout.
func RunWithTimeout(ctx context.Context, runner CommandRunner, timeout time.Duration, workDir, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return runner.Run(ctx, workDir, name, args...)
}

// Verify Runner implements CommandRunner at compile time.
var _ CommandRunner = (*Runner)(nil)
